package domain

// ComputeTotal 把套餐价、模特加价和折扣折算成最终应付金额。
// 折扣只对整单小计生效一次，采用四舍五入（half-up）取整到最小货币单位。
// 纯函数：目录数据的合法性（如负价格）由目录侧保证，这里不做校验。
func ComputeTotal(plan *Plan, sel ModelSelection, promo *Promotion) int64 {
	var base int64
	if plan != nil {
		base = plan.Price
	}
	subtotal := base + sel.AddOnPrice()

	if promo != nil && promo.Rate > 0 {
		return (subtotal*int64(100-promo.Rate) + 50) / 100
	}
	return subtotal
}

// ProductLabel 拼接订单记录和支付网关元数据使用的商品名称。
func ProductLabel(plan *Plan, sel ModelSelection) string {
	if plan == nil {
		return ""
	}
	if name := sel.DisplayName(); name != "" {
		return plan.Title + " + " + name
	}
	return plan.Title
}

package domain

import "errors"

var (
	// ErrSessionNotFound 表示会话不存在或已被关闭。
	ErrSessionNotFound = errors.New("checkout session not found")

	// ErrStepLocked 表示当前步骤的前进条件未满足，状态保持不变。
	ErrStepLocked = errors.New("step requirements not met")

	// ErrInvalidTransition 表示请求的操作和会话当前所处的步骤不匹配。
	ErrInvalidTransition = errors.New("invalid step transition")

	// ErrOrderNotPersisted 表示 3→4 的订单落库失败，用户可原样重试。
	ErrOrderNotPersisted = errors.New("order could not be persisted")

	// ErrOrderNotFound 表示按 ID 查询不到订单记录。
	ErrOrderNotFound = errors.New("order not found")

	// ErrInvalidAmount 表示进入卡支付前的金额校验失败。
	ErrInvalidAmount = errors.New("computed total is not a positive amount")

	// ErrGatewayUnavailable 表示卡支付网关调用失败，建议改用银行转账。
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")

	// ErrUnknownPaymentMethod 表示传入了 bank/card 之外的支付方式。
	ErrUnknownPaymentMethod = errors.New("unknown payment method")

	// ErrUnknownPlan / ErrUnknownArtist 表示第一步引用了目录快照之外的条目。
	ErrUnknownPlan   = errors.New("plan not found in catalog")
	ErrUnknownArtist = errors.New("artist not found in catalog")
)

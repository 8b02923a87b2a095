package domain

// Plan 是可购买的制作套餐，由后台目录维护，结账会话内只读。
// 价格一律使用最小货币单位的整数。
type Plan struct {
	ID       string
	Title    string
	Subtitle string
	Price    int64
	Active   bool
	Featured bool
	Badge    string
}

// Artist 是目录中可选的 AI 出镜模特。
type Artist struct {
	ID         string
	Name       string
	AddOnPrice int64
}

// Promotion 是当前生效的折扣活动，最多同时存在一个。
// Rate 是 0~100 的整数百分比，作用于整单小计。
type Promotion struct {
	Rate  int
	Badge string
}

// CustomModelOffer 是定制模特的固定报价，不引用任何目录模特。
type CustomModelOffer struct {
	Title       string
	Price       int64
	Description string
}

// CatalogSnapshot 是会话打开时一次性拉取的目录数据，会话期间不再刷新。
// 后台同时修改目录不会影响进行中的会话。
type CatalogSnapshot struct {
	Plans       []Plan
	Artists     []Artist
	Promotion   *Promotion // nil 表示没有生效的活动
	CustomModel CustomModelOffer
}

// PlanByID 在快照中查找套餐。
func (s *CatalogSnapshot) PlanByID(id string) *Plan {
	for i := range s.Plans {
		if s.Plans[i].ID == id {
			return &s.Plans[i]
		}
	}
	return nil
}

// ArtistByID 在快照中查找模特。
func (s *CatalogSnapshot) ArtistByID(id string) *Artist {
	for i := range s.Artists {
		if s.Artists[i].ID == id {
			return &s.Artists[i]
		}
	}
	return nil
}

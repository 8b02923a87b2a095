package infrastructure

import "time"

// OrderModel 是 Order 领域对象在数据库中的表示。
type OrderModel struct {
	ID string `gorm:"primaryKey;size:36"`

	CustomerName string
	Company      string
	Email        string
	Phone        string
	Message      string `gorm:"type:text"`

	PlanID    string
	PlanTitle string
	PlanPrice int64

	ModelSummary string
	AddOnPrice   int64

	Platforms string
	Budget    string
	Audience  string `gorm:"type:text"`
	Region    string

	PromoRate   int
	TotalAmount int64
	ProductName string

	PaymentMethod string
	State         string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (OrderModel) TableName() string {
	return "orders"
}

// PlanModel 是套餐目录的数据库表示。
type PlanModel struct {
	ID        string `gorm:"primaryKey;size:36"`
	Title     string
	Subtitle  string
	Price     int64
	Active    bool
	Featured  bool
	Badge     string
	SortOrder int
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (PlanModel) TableName() string {
	return "plans"
}

// ArtistModel 是 AI 模特目录的数据库表示。
type ArtistModel struct {
	ID         string `gorm:"primaryKey;size:36"`
	Name       string
	AddOnPrice int64
	Active     bool
	SortOrder  int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (ArtistModel) TableName() string {
	return "artists"
}

// PromotionModel 是折扣活动的数据库表示，Active 的行最多一条生效。
type PromotionModel struct {
	ID        int64 `gorm:"primaryKey"`
	Rate      int
	Badge     string
	Active    bool
	StartsAt  time.Time
	EndsAt    time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (PromotionModel) TableName() string {
	return "promotions"
}

// CustomModelSettingModel 是定制模特报价的单行配置表。
type CustomModelSettingModel struct {
	ID          int64 `gorm:"primaryKey"`
	Title       string
	Price       int64
	Description string `gorm:"type:text"`
	UpdatedAt   time.Time
}

func (CustomModelSettingModel) TableName() string {
	return "custom_model_settings"
}

package domain

import "time"

// ModelKind 标记模特选择的变体，同一时刻只有一个变体生效。
type ModelKind int

const (
	ModelNone ModelKind = iota
	ModelArtist
	ModelCustom
)

// ArtistChoice 引用目录中的既有模特。
type ArtistChoice struct {
	ArtistID   string
	Name       string
	AddOnPrice int64
}

// CustomChoice 是固定报价的定制模特请求。
type CustomChoice struct {
	Title       string
	Price       int64
	Description string
}

// ModelSelection 是模特选择的和类型：Kind 决定哪个载荷有效。
// 只能通过下面的构造函数整体替换，保证切换变体时旧的模特引用被清空。
type ModelSelection struct {
	Kind   ModelKind
	Artist *ArtistChoice
	Custom *CustomChoice
}

func NoModel() ModelSelection {
	return ModelSelection{Kind: ModelNone}
}

func SelectArtist(artist *Artist) ModelSelection {
	return ModelSelection{
		Kind: ModelArtist,
		Artist: &ArtistChoice{
			ArtistID:   artist.ID,
			Name:       artist.Name,
			AddOnPrice: artist.AddOnPrice,
		},
	}
}

func SelectCustom(offer CustomModelOffer) ModelSelection {
	return ModelSelection{
		Kind: ModelCustom,
		Custom: &CustomChoice{
			Title:       offer.Title,
			Price:       offer.Price,
			Description: offer.Description,
		},
	}
}

// AddOnPrice 返回当前变体带来的加价，未选择时为 0。
func (m ModelSelection) AddOnPrice() int64 {
	switch m.Kind {
	case ModelArtist:
		return m.Artist.AddOnPrice
	case ModelCustom:
		return m.Custom.Price
	default:
		return 0
	}
}

// DisplayName 返回用于订单记录和支付元数据的模特名称。
func (m ModelSelection) DisplayName() string {
	switch m.Kind {
	case ModelArtist:
		return m.Artist.Name
	case ModelCustom:
		return m.Custom.Title
	default:
		return ""
	}
}

// Valid 校验变体的结构完整性：选了既有模特就必须带 ArtistID。
func (m ModelSelection) Valid() bool {
	switch m.Kind {
	case ModelArtist:
		return m.Artist != nil && m.Artist.ArtistID != ""
	case ModelCustom:
		return m.Custom != nil
	default:
		return true
	}
}

// MediaBrief 是第二步收集的投放信息，全部可选，只作为描述性文本进入订单。
type MediaBrief struct {
	Platforms []string
	Budget    string
	Audience  string
	Region    string
}

// ContactInfo 是第三步收集的联系人信息，Name 和 Email 必填。
type ContactInfo struct {
	Name    string
	Company string
	Email   string
	Phone   string
	Message string
}

// OrderDraft 是向导逐步累积的订单草稿，由会话独占持有。
// 关闭向导即整体丢弃，不存在部分提交。
type OrderDraft struct {
	Plan           *Plan
	ModelSelection ModelSelection
	MediaBrief     MediaBrief
	Contact        ContactInfo
	PaymentMethod  PaymentMethod
	CreatedAt      time.Time
}

func NewDraft() *OrderDraft {
	return &OrderDraft{
		ModelSelection: NoModel(),
		CreatedAt:      time.Now(),
	}
}

// Step1Valid 是 1→2 的前进门槛：套餐已选且模特选择结构有效。
func (d *OrderDraft) Step1Valid() bool {
	return d.Plan != nil && d.ModelSelection.Valid()
}

// Step3Valid 是 3→4 的前进门槛：姓名和邮箱非空。
func (d *OrderDraft) Step3Valid() bool {
	return d.Contact.Name != "" && d.Contact.Email != ""
}

package domain

// Step 定义了结账向导的四个步骤。
type Step int

const (
	StepPlanModel Step = iota + 1 // 选择套餐与模特
	StepMedia                     // 投放信息
	StepContact                   // 联系人信息
	StepPayment                   // 支付方式
)

func (s Step) String() string {
	switch s {
	case StepPlanModel:
		return "PLAN_MODEL"
	case StepMedia:
		return "MEDIA"
	case StepContact:
		return "CONTACT"
	case StepPayment:
		return "PAYMENT"
	default:
		return "UNKNOWN"
	}
}

// PaymentPhase 是第四步内部的子状态。
type PaymentPhase string

const (
	PhaseNone      PaymentPhase = ""          // 尚未进入支付步骤
	PhaseSelecting PaymentPhase = "SELECTING" // 等待用户选择支付方式
	PhaseResolved  PaymentPhase = "RESOLVED"  // 已选定方式，终端处理器接管
)

// PaymentMethod 是两种互斥的支付路径。
type PaymentMethod string

const (
	PaymentUnset PaymentMethod = ""
	PaymentBank  PaymentMethod = "bank"
	PaymentCard  PaymentMethod = "card"
)

// forwardTable 定义了合法的前进转移，第四步之后没有前进。
var forwardTable = map[Step]Step{
	StepPlanModel: StepMedia,
	StepMedia:     StepContact,
	StepContact:   StepPayment,
}

// backTable 定义了合法的后退转移，第一步之前没有后退。
var backTable = map[Step]Step{
	StepMedia:   StepPlanModel,
	StepContact: StepMedia,
	StepPayment: StepContact,
}

// NextStep 返回 s 的下一步，第四步返回 false。
func NextStep(s Step) (Step, bool) {
	next, ok := forwardTable[s]
	return next, ok
}

// PrevStep 返回 s 的上一步，第一步返回 false。
func PrevStep(s Step) (Step, bool) {
	prev, ok := backTable[s]
	return prev, ok
}

// CanAdvance 是步骤前进的统一守卫。
// 校验失败不产生错误，只是不放行——这对应界面上置灰的"下一步"按钮。
func CanAdvance(s Step, draft *OrderDraft) bool {
	switch s {
	case StepPlanModel:
		return draft.Step1Valid()
	case StepMedia:
		return true // 第二步所有字段均可选
	case StepContact:
		return draft.Step3Valid()
	default:
		return false
	}
}

package billing

// PlanChangeType classifies how a plan change takes effect
type PlanChangeType string

const (
	// PlanChangeImmediate switches the plan mid-cycle with a prorated charge
	PlanChangeImmediate PlanChangeType = "IMMEDIATE"
	// PlanChangeScheduled defers the switch to the next successful payment
	PlanChangeScheduled PlanChangeType = "SCHEDULED"
)

// String returns the string representation of PlanChangeType
func (t PlanChangeType) String() string {
	return string(t)
}

// PlanChangeEvaluator decides whether a plan change can take effect
// immediately or must wait for the next natural renewal. Period changes and
// capacity downgrades realign the cycle boundary and cannot be fairly
// prorated mid-cycle, so they are deferred.
type PlanChangeEvaluator struct{}

// NewPlanChangeEvaluator creates a new evaluator
func NewPlanChangeEvaluator() *PlanChangeEvaluator {
	return &PlanChangeEvaluator{}
}

// Evaluate applies the decision rule in order: differing billing periods are
// scheduled, allowance downgrades are scheduled, everything else is immediate.
func (e *PlanChangeEvaluator) Evaluate(currentPlan, newPlan *Plan) PlanChangeType {
	if currentPlan.Period != newPlan.Period {
		return PlanChangeScheduled
	}
	if newPlan.OrdersLimit < currentPlan.OrdersLimit {
		return PlanChangeScheduled
	}
	return PlanChangeImmediate
}

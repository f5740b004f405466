package module

// ReasoningField is the output field ChainOfThought prepends to a
// signature. It is produced before the signature's own outputs so the model
// commits to its reasoning first.
const ReasoningField = "reasoning"

// NewChainOfThought creates a Predict whose signature is extended with a
// leading reasoning output. The reasoning text is available on the
// prediction under ReasoningField; the signature's declared outputs follow
// it unchanged.
func NewChainOfThought(sig Signature, opts ...PredictOption) *Predict {
	if !sig.hasOutput(ReasoningField) {
		outputs := make([]Field, 0, len(sig.Outputs)+1)
		outputs = append(outputs, Field{
			Name:        ReasoningField,
			Description: "think step by step to work out the answer",
		})
		outputs = append(outputs, sig.Outputs...)
		sig.Outputs = outputs
	}
	return NewPredict(sig, opts...)
}

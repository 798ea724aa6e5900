package cognition

// Operation prompt templates, rendered by the prompt engine.
const (
	thinkTemplate = `Consider the following and share your thinking.

Topic: {{topic}}

Think through the topic step by step, then summarize your conclusions.`

	reasonTemplate = `Reason carefully about the following question.

Question: {{question}}

Premises:
{{premises}}

Lay out your reasoning chain explicitly and state your conclusion. Flag any
step you are uncertain about.`

	createTemplate = `Create the following.

Brief: {{brief}}

Be original. Quality matters more than length.`

	evaluateTemplate = `Evaluate the following against the given criteria.

Subject:
{{subject}}

Criteria: {{criteria}}

Respond with a JSON object containing exactly two fields:
  "score": a number from 0.0 to 1.0 (higher is better)
  "explanation": a short justification

Return only the JSON object.`
)

package pipeline

// QAPair is one generated question with its answer. A nil Answer means the
// answer could not be produced; it is encoded as JSON null.
type QAPair struct {
	Question string  `json:"question"`
	Answer   *string `json:"answer"`
}

// Available reports whether the pair carries an answer.
func (p QAPair) Available() bool {
	return p.Answer != nil
}

// AnswerText returns the answer, or an empty string when it is unavailable.
func (p QAPair) AnswerText() string {
	if p.Answer == nil {
		return ""
	}
	return *p.Answer
}

// Answered builds a pair with an available answer.
func Answered(question, answer string) QAPair {
	return QAPair{Question: question, Answer: &answer}
}

// Unanswered builds a pair whose answer is unavailable.
func Unanswered(question string) QAPair {
	return QAPair{Question: question}
}

// Result is the output of one pipeline run. Answers follow the order of
// Questions.
type Result struct {
	Questions []string `json:"questions"`
	Answers   []QAPair `json:"answers"`
}

package model

// QuestionGenerationPrefix is the instruction the question-generation model
// expects in front of the source passage.
const QuestionGenerationPrefix = "generate multiple questions: "

// QuestionSeparator splits multiple questions packed into one generated text.
const QuestionSeparator = "<sep>"

type SummarizationParameters struct {
	MaxLength int  `json:"max_length"`
	MinLength int  `json:"min_length"`
	DoSample  bool `json:"do_sample"`
}

type SummarizationRequest struct {
	Inputs     string                  `json:"inputs"`
	Parameters SummarizationParameters `json:"parameters"`
}

// SummaryOutput is one element of the summarization response list.
type SummaryOutput struct {
	SummaryText string `json:"summary_text"`
}

type QuestionGenerationRequest struct {
	Inputs string `json:"inputs"`
}

// GeneratedText is one element of the question-generation response list.
type GeneratedText struct {
	GeneratedText string `json:"generated_text"`
}

type QuestionAnsweringRequest struct {
	Question string `json:"question"`
	Context  string `json:"context"`
}

type QuestionAnsweringResponse struct {
	Answer string  `json:"answer"`
	Score  float64 `json:"score"`
	Start  int     `json:"start"`
	End    int     `json:"end"`
}

package domain

// ResultDocument is the payload POSTed downstream when a pipeline reaches its
// terminal step. Pages are ordered by ascending scene number; columns a branch
// never committed appear as null.
type ResultDocument struct {
	PipelineID string       `json:"pipelineId"`
	Status     string       `json:"status"`
	PageList   []ResultPage `json:"pageList"`
}

type ResultPage struct {
	PageIndex int     `json:"pageIndex"`
	Mood      *string `json:"mood"`
	Story     *string `json:"story"`
	ImageURL  *string `json:"imageUrl"`
}

const ResultStatusCompleted = "completed"

// PageFromScene projects a stored row into its notification shape.
func PageFromScene(s *SceneResult) ResultPage {
	return ResultPage{
		PageIndex: s.SceneNumber,
		Mood:      s.Mood,
		Story:     s.SceneStory,
		ImageURL:  s.SceneImageURL,
	}
}

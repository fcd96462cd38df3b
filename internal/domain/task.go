package domain

// Task statuses. Transitions are monotonic: queued -> processing -> done|failed.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusDone       Status = "done"
	StatusFailed     Status = "failed"
)

// Processor orders. 1..6 form the spine; 31 and 32 are the per-scene branch
// steps spawned after scene parsing (two-digit encoding: parent order 3 plus
// a branch digit).
const (
	OrderTranslateKoEn   = 1
	OrderStoryWrite      = 2
	OrderSceneParse      = 3
	OrderPromptMake      = 4
	OrderImageMake       = 5
	OrderNotify          = 6
	OrderTranslateEnKo   = 31
	OrderEmotionClassify = 32
)

// Redis hash field names for task records.
const (
	TaskFieldStatus     = "status"
	TaskFieldPayload    = "payload"
	TaskFieldPipelineID = "pipelineId"
	TaskFieldOrder      = "order"
	TaskFieldStepID     = "stepId"
	TaskFieldResult     = "result"
)

// RequiredTaskFields must be present on a claimed record before any processor
// is invoked.
var RequiredTaskFields = []string{TaskFieldStatus, TaskFieldPayload, TaskFieldPipelineID, TaskFieldOrder}

// Task is one scheduled step of a pipeline run.
type Task struct {
	StepID     string
	PipelineID string
	Order      int
	Status     Status
	Payload    string
	Result     string
}

package domain

// TrainingConfig is the user-supplied configuration of one run.
type TrainingConfig struct {
	Epochs       int     `json:"epochs"`
	LearningRate float64 `json:"learning_rate"`
	// BatchSize <= 0 means full batch.
	BatchSize int `json:"batch_size,omitempty"`
}

type TrainingState int

const (
	TrainingIdle TrainingState = iota
	TrainingActive
)

func (s TrainingState) String() string {
	switch s {
	case TrainingIdle:
		return "idle"
	case TrainingActive:
		return "training"
	default:
		return "unknown"
	}
}

// TrainingOutcome is how a run ended.
type TrainingOutcome string

const (
	OutcomeCompleted TrainingOutcome = "completed"
	OutcomeStopped   TrainingOutcome = "stopped"
	OutcomeFailed    TrainingOutcome = "failed"
	OutcomeRejected  TrainingOutcome = "rejected"
)

// Tone colours a status line.
type Tone int

const (
	ToneInfo Tone = iota
	ToneSuccess
	ToneError
)

// Status is the text shown in the training status area.
type Status struct {
	Text string `json:"text"`
	Tone Tone   `json:"tone"`
}

func InfoStatus(text string) Status    { return Status{Text: text, Tone: ToneInfo} }
func SuccessStatus(text string) Status { return Status{Text: text, Tone: ToneSuccess} }
func ErrorStatus(text string) Status   { return Status{Text: text, Tone: ToneError} }

// EpochUpdate carries the denormalized line after one epoch.
type EpochUpdate struct {
	Epoch  int     `json:"epoch"`
	Epochs int     `json:"epochs"`
	Loss   float64 `json:"loss"`
	Line   Line    `json:"line"`
}

// TrainingResult summarizes a finished run.
type TrainingResult struct {
	Outcome       TrainingOutcome `json:"outcome"`
	Line          Line            `json:"line"`
	EpochsApplied int             `json:"epochs_applied"`
	FinalMSE      float64         `json:"final_mse"`
	Err           error           `json:"-"`
}

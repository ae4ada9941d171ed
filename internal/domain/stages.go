package domain

// Stages is the three-checkpoint progress view rendered by the tracking
// screen: received -> processed -> completed.
type Stages struct {
	Received  bool `json:"received"`
	Processed bool `json:"processed"`
	Completed bool `json:"completed"`
}

// ProjectStage maps a status to its progress checkpoints. Total over the
// three valid statuses; Received is true for any persisted record.
func ProjectStage(s Status) Stages {
	return Stages{
		Received:  true,
		Processed: s == StatusConfirmed || s == StatusCompleted,
		Completed: s == StatusCompleted,
	}
}

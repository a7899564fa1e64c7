package config

type WorkerKeyStruct struct {
	PersistProgressQueue string
	ExamStatsQueue       string
}

var WorkerKey = &WorkerKeyStruct{
	PersistProgressQueue: "persist_progress_queue",
	ExamStatsQueue:       "exam_stats_queue",
}

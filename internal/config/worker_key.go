package config

// WorkerKeyStruct names the Redis lists consumed by background workers.
type WorkerKeyStruct struct {
	PersistActivityQueue string
}

var WorkerKey = &WorkerKeyStruct{
	PersistActivityQueue: "persist_activity_log_queue",
}

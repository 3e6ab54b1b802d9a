package host

// Enqueue queues cells on a kernel as if a run had been requested for them.
var Enqueue = (*CellExecution).enqueue

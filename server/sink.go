package server

import "github.com/brensch/diamonds/store"

//go:generate go tool mockgen -destination=./mocks/sink_mock.go -package=mocks . DecisionSink

// DecisionSink receives every decision the server makes. store.BatchWriter
// satisfies it.
type DecisionSink interface {
	Record(row store.DecisionRow) error
}

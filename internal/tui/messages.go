package tui

import (
	"github.com/architeketh/retail-trends-bot/internal/classify"
	"github.com/architeketh/retail-trends-bot/internal/report"
)

type reloadedMsg struct {
	snapshot report.Snapshot
	buckets  classify.Buckets
}

type errMsg struct {
	err error
}

package tui

import (
	"github.com/barfriedman1/FDA-drug-recall/internal/cache"
)

type datasetLoadedMsg struct {
	snapshot *cache.Snapshot
}

type loadErrMsg struct {
	err error
}

type errMsg struct {
	err error
}

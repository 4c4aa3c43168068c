package models

import (
	"time"

	"github.com/smazurov/soundnode/internal/logging"
)

// LogsInput filters the in-memory log history.
type LogsInput struct {
	Module  string    `query:"module" example:"backend" doc:"Only entries of this module and its sub-modules"`
	Level   string    `query:"level" enum:"debug,info,warn,error" doc:"Minimum level"`
	Library string    `query:"library" example:"libpulse.so.0" doc:"Only entries about this shared library"`
	Since   time.Time `query:"since" doc:"Only entries at or after this time"`
	Limit   int       `query:"limit" minimum:"0" maximum:"1000" example:"100" doc:"Newest N entries, 0 for all"`
}

// LogsData holds matching entries, oldest first.
type LogsData struct {
	Entries []logging.LogEntry `json:"entries" doc:"Log entries in chronological order"`
	Count   int                `json:"count" example:"12" doc:"Number of entries"`
}

type LogsResponse struct {
	Body LogsData
}

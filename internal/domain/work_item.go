package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// WorkItem is one pending line of the list file: a metadata record and the
// data blob it points at.
type WorkItem struct {
	MetadataID int64 `json:"metadata_id"`
	DataID     int64 `json:"data_id"`
}

// String renders the item in list-file form.
func (w WorkItem) String() string {
	return strconv.FormatInt(w.MetadataID, 10) + "," + strconv.FormatInt(w.DataID, 10)
}

// ParseWorkItem parses a "metadata_id,data_id" line. Fields after the second
// are ignored.
func ParseWorkItem(line string) (WorkItem, error) {
	fields := strings.Split(strings.TrimSpace(line), ",")
	if len(fields) < 2 {
		return WorkItem{}, fmt.Errorf("%w: %q", ErrMalformedWorkItem, line)
	}

	metadataID, err := strconv.ParseInt(strings.TrimSpace(fields[0]), 10, 64)
	if err != nil {
		return WorkItem{}, fmt.Errorf("%w: metadata_id %q", ErrMalformedWorkItem, fields[0])
	}
	dataID, err := strconv.ParseInt(strings.TrimSpace(fields[1]), 10, 64)
	if err != nil {
		return WorkItem{}, fmt.Errorf("%w: data_id %q", ErrMalformedWorkItem, fields[1])
	}

	return WorkItem{MetadataID: metadataID, DataID: dataID}, nil
}

// QueueItem is a row of the sender queue table. Rows are created here and
// owned by the downstream sender afterwards.
type QueueItem struct {
	ID         int64     `json:"id"`
	MetadataID int64     `json:"metadata_id"`
	DataID     int64     `json:"data_id"`
	SenderID   int64     `json:"sender_id"`
	CreatedAt  time.Time `json:"record_created"`
}

// MetadataFilter selects rows from the metadata view.
type MetadataFilter struct {
	From       time.Time
	To         time.Time
	TesterType string
	DataType   string
}

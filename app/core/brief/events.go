package brief

import (
	"context"
	"os"

	"github.com/tidwall/gjson"

	"daybrief/app/pkg/types"
)

// FileEvents reads today's events from a local JSON file, either a bare
// array or {"events": [...]}. A missing file means no events, matching a
// disabled calendar upstream.
type FileEvents struct {
	Path string
}

func (f *FileEvents) Today(ctx context.Context) ([]types.Event, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	list := gjson.GetBytes(data, "events")
	if !list.Exists() {
		list = gjson.ParseBytes(data)
	}

	var events []types.Event
	for _, e := range list.Array() {
		events = append(events, types.Event{
			Summary:  e.Get("summary").String(),
			Start:    e.Get("start").String(),
			End:      e.Get("end").String(),
			Location: e.Get("location").String(),
		})
	}
	return events, nil
}

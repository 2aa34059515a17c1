package driver

import (
	"encoding/json"
	"fmt"

	"netxlate/internal/diag"
	"netxlate/internal/observ"
	"netxlate/internal/source"
)

type timingNote struct {
	Path string `json:"path,omitempty"`
	observ.Report
}

// AppendTimings records the report of t in bag as an info diagnostic whose
// single note is the report in JSON. A full bag still takes it.
func AppendTimings(bag *diag.Bag, t *observ.Timer, path string) {
	if bag == nil || t == nil {
		return
	}
	r := t.Report()
	data, err := json.Marshal(timingNote{Path: path, Report: r})
	if err != nil {
		return
	}
	d := diag.New(diag.SevInfo, diag.ObsTimings, source.Span{},
		fmt.Sprintf("timings: total %.2f ms, wall %.2f ms", r.TotalMS, r.WallMS)).
		WithNote(source.Span{}, string(data))
	bag.AddAlways(d)
}

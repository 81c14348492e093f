//go:build js && wasm

package main

import (
	"bytes"
	"encoding/json"
	"syscall/js"

	"github.com/roiboard/roiboard/internal/document"
	"github.com/roiboard/roiboard/internal/engine"
	"github.com/roiboard/roiboard/internal/geom"
)

var eng *engine.Engine

func main() {
	eng = engine.New(engine.DefaultOptions())

	api := js.Global().Get("Object").New()

	// --- Commands (host → engine) ---
	api.Set("loadImage", js.FuncOf(loadImage))
	api.Set("setScale", js.FuncOf(setScale))
	api.Set("zoomIn", js.FuncOf(zoomIn))
	api.Set("zoomOut", js.FuncOf(zoomOut))
	api.Set("fitTo", js.FuncOf(fitTo))
	api.Set("pointerDown", js.FuncOf(pointerDown))
	api.Set("pointerMove", js.FuncOf(pointerMove))
	api.Set("pointerUp", js.FuncOf(pointerUp))
	api.Set("doubleClick", js.FuncOf(doubleClick))
	api.Set("select", js.FuncOf(selectROI))
	api.Set("deselect", js.FuncOf(deselect))
	api.Set("deleteROI", js.FuncOf(deleteROI))
	api.Set("clearAll", js.FuncOf(clearAll))
	api.Set("duplicate", js.FuncOf(duplicate))
	api.Set("applyMetadata", js.FuncOf(applyMetadata))
	api.Set("loadROISet", js.FuncOf(loadROISet))
	api.Set("loadSampleSet", js.FuncOf(loadSampleSet))

	// --- Queries (host ← engine) ---
	api.Set("render", js.FuncOf(render))
	api.Set("getROIs", js.FuncOf(getROIs))
	api.Set("getSelected", js.FuncOf(getSelected))
	api.Set("getEditor", js.FuncOf(getEditor))
	api.Set("getCursor", js.FuncOf(getCursor))
	api.Set("getGesture", js.FuncOf(getGesture))
	api.Set("getStatus", js.FuncOf(getStatus))
	api.Set("getViewport", js.FuncOf(getViewport))
	api.Set("getIconZones", js.FuncOf(getIconZones))
	api.Set("getDocument", js.FuncOf(getDocument))
	api.Set("imageMatches", js.FuncOf(imageMatches))

	js.Global().Set("roiEngine", api)
	js.Global().Set("roiWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func result(err error) interface{} {
	if err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func toJSON(v any) interface{} {
	data, err := json.Marshal(v)
	if err != nil {
		return js.ValueOf("null")
	}
	return js.ValueOf(string(data))
}

// pointArgs reads (x, y[, scale]). A missing scale means the current zoom.
func pointArgs(args []js.Value) (geom.PointF, float64, bool) {
	if len(args) < 2 {
		return geom.PointF{}, 0, false
	}
	scale := eng.Viewport().Scale
	if len(args) > 2 && args[2].Type() == js.TypeNumber {
		scale = args[2].Float()
	}
	return geom.PointF{X: args[0].Float(), Y: args[1].Float()}, scale, true
}

func stringArg(args []js.Value, i int) string {
	if len(args) <= i || args[i].Type() != js.TypeString {
		return ""
	}
	return args[i].String()
}

// --- Command Handlers ---

func loadImage(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return js.ValueOf(map[string]interface{}{"error": "expected path, width, height"})
	}
	return result(eng.LoadImage(args[0].String(), geom.Size{Width: args[1].Int(), Height: args[2].Int()}))
}

func setScale(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	return result(eng.SetScale(args[0].Float()))
}

func zoomIn(this js.Value, args []js.Value) interface{} {
	return result(eng.ZoomIn())
}

func zoomOut(this js.Value, args []js.Value) interface{} {
	return result(eng.ZoomOut())
}

func fitTo(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	return result(eng.FitTo(args[0].Float(), args[1].Float()))
}

func pointerDown(this js.Value, args []js.Value) interface{} {
	p, scale, ok := pointArgs(args)
	if !ok {
		return toJSON(engine.Intent{})
	}
	return toJSON(eng.PointerDown(p, scale))
}

func pointerMove(this js.Value, args []js.Value) interface{} {
	p, scale, ok := pointArgs(args)
	if !ok {
		return js.ValueOf(false)
	}
	return js.ValueOf(eng.PointerMove(p, scale))
}

func pointerUp(this js.Value, args []js.Value) interface{} {
	eng.PointerUp()
	return nil
}

func doubleClick(this js.Value, args []js.Value) interface{} {
	p, scale, ok := pointArgs(args)
	if !ok {
		return toJSON(engine.Intent{})
	}
	return toJSON(eng.DoubleClick(p, scale))
}

func selectROI(this js.Value, args []js.Value) interface{} {
	return result(eng.Select(stringArg(args, 0)))
}

func deselect(this js.Value, args []js.Value) interface{} {
	eng.Deselect()
	return nil
}

// deleteROI removes the given ROI, or the selection when called without an id.
func deleteROI(this js.Value, args []js.Value) interface{} {
	if id := stringArg(args, 0); id != "" {
		return result(eng.Delete(id))
	}
	return result(eng.DeleteSelected())
}

func clearAll(this js.Value, args []js.Value) interface{} {
	eng.ClearAll()
	return nil
}

func duplicate(this js.Value, args []js.Value) interface{} {
	id := stringArg(args, 0)
	if id == "" {
		id = eng.SelectedID()
	}
	view, err := eng.Duplicate(id)
	if err != nil {
		return result(err)
	}
	return toJSON(view)
}

func applyMetadata(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf(map[string]interface{}{"error": "expected id, metadata JSON"})
	}
	var m engine.Metadata
	if err := json.Unmarshal([]byte(args[1].String()), &m); err != nil {
		return result(err)
	}
	return result(eng.ApplyMetadata(args[0].String(), m))
}

func loadROISet(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "missing ROI set JSON"})
	}
	set, err := document.DecodeBytes([]byte(args[0].String()))
	if err != nil {
		return result(err)
	}
	return result(eng.LoadROISet(set))
}

func loadSampleSet(this js.Value, args []js.Value) interface{} {
	return result(eng.LoadROISet(document.NewSampleSet(eng.ImagePath())))
}

// --- Query Handlers ---

func render(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.OverlayJSON())
}

func getROIs(this js.Value, args []js.Value) interface{} {
	return toJSON(eng.ROIs())
}

func getSelected(this js.Value, args []js.Value) interface{} {
	view, ok := eng.Selected()
	if !ok {
		return js.ValueOf("null")
	}
	return toJSON(view)
}

func getEditor(this js.Value, args []js.Value) interface{} {
	view, err := eng.EditorView(stringArg(args, 0))
	if err != nil {
		return result(err)
	}
	return toJSON(view)
}

func getCursor(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.Cursor().String())
}

func getGesture(this js.Value, args []js.Value) interface{} {
	return toJSON(eng.Gesture())
}

func getStatus(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.Status().String())
}

func getViewport(this js.Value, args []js.Value) interface{} {
	return toJSON(eng.Viewport())
}

func getIconZones(this js.Value, args []js.Value) interface{} {
	gear, dup, ok := eng.IconZones()
	if !ok {
		return js.ValueOf("null")
	}
	return toJSON(map[string]engine.Rect{"gear": gear, "duplicate": dup})
}

func getDocument(this js.Value, args []js.Value) interface{} {
	set, err := eng.Document()
	if err != nil {
		return result(err)
	}
	var buf bytes.Buffer
	if err := document.Encode(&buf, set); err != nil {
		return result(err)
	}
	return js.ValueOf(buf.String())
}

func imageMatches(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.ImageMatches(stringArg(args, 0)))
}

//go:build js && wasm

// Watermark WASM - in-browser editor backend.
// Compiled with: GOOS=js GOARCH=wasm go build -o watermark.wasm ./clients/wasm/
package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync"
	"syscall/js"

	"go.uber.org/zap"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/ibucoin/watermark/pkg/canvas"
	"github.com/ibucoin/watermark/pkg/editor"
	"github.com/ibucoin/watermark/pkg/export"
	"github.com/ibucoin/watermark/pkg/logger"
	"github.com/ibucoin/watermark/pkg/render"
)

// Finished exports waiting for goExportResult.
var (
	resultsMu sync.Mutex
	results   = make(map[string]editor.ExportResult)
)

var (
	ctl    *editor.Controller
	cancel context.CancelFunc
)

func main() {
	if err := logger.Init(&logger.LogConfig{Level: "info"}, "dev"); err != nil {
		fmt.Println("logger:", err)
	}
	if err := start(goregular.TTF, editor.NewState()); err != nil {
		fmt.Println("start:", err)
		return
	}
	fmt.Println("Watermark WASM loaded")

	js.Global().Set("goAddImage", js.FuncOf(addImage))
	js.Global().Set("goSetFont", js.FuncOf(setFont))
	js.Global().Set("goCommand", js.FuncOf(command))
	js.Global().Set("goPointer", js.FuncOf(pointer))
	js.Global().Set("goState", js.FuncOf(state))
	js.Global().Set("goPreview", js.FuncOf(preview))
	js.Global().Set("goExport", js.FuncOf(requestExport))
	js.Global().Set("goExportResult", js.FuncOf(exportResult))
	js.Global().Set("goReady", js.ValueOf(true))

	select {}
}

// start replaces the controller with one drawing with fontData, carrying s
// over, and starts its export loop. Preview and export get separate font
// managers since they draw concurrently.
func start(fontData []byte, s editor.State) error {
	fonts, err := canvas.NewFontManagerFromBytes(fontData, canvas.DefaultFaceCacheSize)
	if err != nil {
		return err
	}
	exportFonts, err := canvas.NewFontManagerFromBytes(fontData, canvas.DefaultFaceCacheSize)
	if err != nil {
		return err
	}
	if cancel != nil {
		cancel()
	}
	log := logger.Lg
	ctl = editor.NewController(
		editor.WithLogger(log),
		editor.WithState(s),
		editor.WithEngine(render.NewEngine(fonts, render.WithLogger(log))),
		editor.WithExporter(export.NewExporter(
			render.NewEngine(exportFonts, render.WithLogger(log)),
			export.WithLogger(log),
		)),
	)

	ctx, stop := context.WithCancel(context.Background())
	cancel = stop
	go func() { _ = ctl.Run(ctx) }()
	go collect(ctx, ctl)
	return nil
}

func collect(ctx context.Context, c *editor.Controller) {
	for {
		select {
		case <-ctx.Done():
			return
		case res := <-c.Results():
			resultsMu.Lock()
			results[res.ID] = res
			resultsMu.Unlock()
		}
	}
}

func errorValue(format string, args ...interface{}) js.Value {
	return js.ValueOf("error: " + fmt.Sprintf(format, args...))
}

func jsonValue(v interface{}) js.Value {
	data, err := json.Marshal(v)
	if err != nil {
		return errorValue("encode: %v", err)
	}
	return js.ValueOf(string(data))
}

// goAddImage(name, base64Data) - decode an image into the working set.
func addImage(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return errorValue("need name, base64Data")
	}
	name := args[0].String()
	data, err := base64.StdEncoding.DecodeString(args[1].String())
	if err != nil {
		return errorValue("invalid base64: %v", err)
	}
	img, err := ctl.AddImage(name, bytes.NewReader(data), int64(len(data)), nil)
	if err != nil {
		return errorValue("%v", err)
	}
	logger.Info("image added", zap.String("name", img.Name), zap.Int("width", img.Width), zap.Int("height", img.Height))
	return jsonValue(ctl.View())
}

// goSetFont(base64Data) - draw with a custom TTF/OTF from now on.
func setFont(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorValue("need base64Data")
	}
	if ctl.Busy() {
		return errorValue("export in progress")
	}
	data, err := base64.StdEncoding.DecodeString(args[0].String())
	if err != nil {
		return errorValue("invalid base64: %v", err)
	}
	if err := start(data, ctl.State()); err != nil {
		return errorValue("%v", err)
	}
	return js.ValueOf("ok")
}

// goCommand(commandJSON) - apply one editor command, returns the state JSON.
func command(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorValue("need commandJSON")
	}
	cmd, err := editor.DecodeCommand([]byte(args[0].String()))
	if err != nil {
		return errorValue("%v", err)
	}
	if err := ctl.Dispatch(cmd); err != nil {
		return errorValue("%v", err)
	}
	return jsonValue(ctl.View())
}

// goPointer(eventJSON) - feed a pointer event in preview CSS pixels.
func pointer(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorValue("need eventJSON")
	}
	var ev editor.PointerEvent
	if err := json.Unmarshal([]byte(args[0].String()), &ev); err != nil {
		return errorValue("parse event: %v", err)
	}
	res, err := ctl.HandlePointer(ev)
	if err != nil {
		return errorValue("%v", err)
	}
	return jsonValue(struct {
		Pointer editor.PointerResult `json:"pointer"`
		State   editor.View          `json:"state"`
	}{res, ctl.View()})
}

// goState() - current state JSON.
func state(this js.Value, args []js.Value) interface{} {
	return jsonValue(ctl.View())
}

// goPreview(width, height, dpr) - render the current image, returns base64 PNG.
func preview(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return errorValue("need width, height, dpr")
	}
	surface, err := ctl.Preview(args[0].Float(), args[1].Float(), args[2].Float())
	if err != nil {
		return errorValue("%v", err)
	}
	var buf bytes.Buffer
	if err := export.Encode(&buf, surface.Image(), export.PNG, 0); err != nil {
		return errorValue("encode: %v", err)
	}
	return js.ValueOf(base64.StdEncoding.EncodeToString(buf.Bytes()))
}

// goExport() - start an export, returns its id. Poll with goExportResult.
func requestExport(this js.Value, args []js.Value) interface{} {
	id, ok := ctl.RequestExport()
	if !ok {
		return errorValue("export in progress")
	}
	return js.ValueOf(id)
}

// goExportResult(id) - null while pending, then {name, mimeType, data}
// with base64 data. A result is handed out once.
func exportResult(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorValue("need id")
	}
	id := args[0].String()

	resultsMu.Lock()
	res, ok := results[id]
	delete(results, id)
	resultsMu.Unlock()

	if !ok {
		return js.Null()
	}
	if res.Err != nil {
		return errorValue("%s", editor.UserMessage(res.Err))
	}
	return js.ValueOf(map[string]interface{}{
		"name":     res.Name,
		"mimeType": res.MimeType,
		"count":    res.Count,
		"data":     base64.StdEncoding.EncodeToString(res.Data),
	})
}

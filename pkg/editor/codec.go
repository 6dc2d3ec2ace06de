// codec.go - JSON form of commands for the HTTP and browser clients:
// {"type": "updateStyle", "id": "tb-...", "opacity": 30}.
package editor

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ibucoin/watermark/pkg/export"
)

// ErrUnknownCommand is returned by DecodeCommand for an unrecognised type.
var ErrUnknownCommand = errors.New("unknown command")

var commandTypes = map[string]func() Command{
	"addRegion":       func() Command { return &AddRegion{} },
	"duplicateRegion": func() Command { return &DuplicateRegion{} },
	"removeRegion":    func() Command { return &RemoveRegion{} },
	"selectRegion":    func() Command { return &SelectRegion{} },
	"updateText":      func() Command { return &UpdateText{} },
	"updateStyle":     func() Command { return &UpdateStyle{} },
	"updatePosition":  func() Command { return &UpdatePosition{} },
	"updateGeometry":  func() Command { return &UpdateGeometry{} },
	"updateTile":      func() Command { return &UpdateTile{} },
	"removeImage":     func() Command { return &RemoveImage{} },
	"clearImages":     func() Command { return &ClearImages{} },
	"selectImage":     func() Command { return &SelectImage{} },
	"setSync":         func() Command { return &SetSync{} },
	"setExportFormat": func() Command { return &SetExportFormat{} },
	"setQuality":      func() Command { return &SetQuality{} },
	"setZoom":         func() Command { return &SetZoom{} },
	"copyToImages":    func() Command { return &CopyToImages{} },
}

// DecodeCommand parses one JSON command. Images cannot be added this way;
// they go through Controller.AddImage.
func DecodeCommand(data []byte) (Command, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decode command: %w", err)
	}
	ctor, ok := commandTypes[head.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, head.Type)
	}
	ptr := ctor()
	if err := json.Unmarshal(data, ptr); err != nil {
		return nil, fmt.Errorf("decode %s: %w", head.Type, err)
	}
	cmd := deref(ptr)

	if f, ok := cmd.(SetExportFormat); ok {
		format, err := export.ParseFormat(string(f.Format))
		if err != nil {
			return nil, err
		}
		cmd = SetExportFormat{Format: format}
	}
	return cmd, nil
}

// deref turns the pointer built for decoding back into the value variant
// Apply switches on.
func deref(cmd Command) Command {
	switch c := cmd.(type) {
	case *AddRegion:
		return *c
	case *DuplicateRegion:
		return *c
	case *RemoveRegion:
		return *c
	case *SelectRegion:
		return *c
	case *UpdateText:
		return *c
	case *UpdateStyle:
		return *c
	case *UpdatePosition:
		return *c
	case *UpdateGeometry:
		return *c
	case *UpdateTile:
		return *c
	case *RemoveImage:
		return *c
	case *ClearImages:
		return *c
	case *SelectImage:
		return *c
	case *SetSync:
		return *c
	case *SetExportFormat:
		return *c
	case *SetQuality:
		return *c
	case *SetZoom:
		return *c
	case *CopyToImages:
		return *c
	default:
		return cmd
	}
}

func commandName(cmd Command) string {
	return fmt.Sprintf("%T", cmd)
}

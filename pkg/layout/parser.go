// parser.go - JSON parsing and example generation.
package layout

import (
	"encoding/json"
	"fmt"
	"os"
)

// GetExampleJSON returns a sample layout.json for `watermark init`.
func GetExampleJSON() string {
	return `{
  "meta": {
    "name": "Sample Layout",
    "description": "A diagonal tile plus a corner signature"
  },
  "tile": {
    "enabled": true,
    "text": "CONFIDENTIAL",
    "color": "#333333",
    "opacity": 25,
    "fontSize": 48,
    "angle": -30,
    "spacing": 150
  },
  "sync": true,
  "regions": [
    {
      "id": "tb-signature",
      "text": "© Example Studio",
      "x": 85, "y": 92, "width": 20, "angle": 0,
      "style": { "color": "#ffffff", "opacity": 80, "fontSize": 32 }
    }
  ],
  "images": {
    "cover.jpg": {
      "regions": [
        { "text": "Draft", "x": 50, "y": 50, "width": 30, "angle": -15 }
      ]
    }
  },
  "export": { "format": "png", "quality": 90 }
}`
}

// ParseLayout decodes a layout from JSON.
func ParseLayout(data []byte) (*Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("parse layout JSON: %w", err)
	}
	return &l, nil
}

// ParseLayoutFile reads and decodes a standalone layout JSON file without
// applying defaults.
func ParseLayoutFile(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read layout: %w", err)
	}
	return ParseLayout(data)
}

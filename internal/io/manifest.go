package io

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ecopia-map/cloud_colorizer/internal/geometry"
	"github.com/shopspring/decimal"
)

func init() {
	// manifest numbers are written as plain JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}

// Manifest describes a produced buffer. It is written next to the buffer on request and never read by the viewer.
type Manifest struct {
	Asset         Asset             `json:"asset"`
	Source        string            `json:"source"`
	Output        string            `json:"output"`
	TotalPoints   int               `json:"totalPoints"`
	Stride        int               `json:"stride"`
	Points        int               `json:"points"`
	Layout        Layout            `json:"layout"`
	GroundOffset  decimal.Decimal   `json:"groundOffset"`
	Extent        []decimal.Decimal `json:"extent"`
	Region        []decimal.Decimal `json:"region,omitempty"`
	FallbackColor [3]uint8          `json:"fallbackColor"`
	FallbackCount int64             `json:"fallbackCount"`
	Tiles         []ManifestTile    `json:"tiles"`
}

type Asset struct {
	Version   string `json:"version"`
	Generator string `json:"generator"`
}

type Layout struct {
	Positions Block `json:"positions"`
	Colors    Block `json:"colors"`
}

type Block struct {
	ByteOffset    int64    `json:"byteOffset"`
	ByteLength    int64    `json:"byteLength"`
	ComponentType string   `json:"componentType"`
	Components    []string `json:"components"`
}

type ManifestTile struct {
	Priority int               `json:"priority"`
	Path     string            `json:"path"`
	Width    int               `json:"width"`
	Height   int               `json:"height"`
	Bounds   []decimal.Decimal `json:"bounds"`
	Hits     int64             `json:"hits"`
}

// NewLayout describes the byte blocks of a buffer holding n points
func NewLayout(n int) Layout {
	return Layout{
		Positions: Block{
			ByteOffset:    0,
			ByteLength:    int64(n) * PositionBytes,
			ComponentType: "FLOAT32_LE",
			Components:    []string{"x", "up", "depth"},
		},
		Colors: Block{
			ByteOffset:    int64(n) * PositionBytes,
			ByteLength:    int64(n) * ColorBytes,
			ComponentType: "UNSIGNED_BYTE",
			Components:    []string{"r", "g", "b"},
		},
	}
}

// Round returns v rounded to the given number of decimal places
func Round(v float64, places int32) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(places)
}

// RoundBox returns [left, bottom, right, top] rounded to the given number of decimal places
func RoundBox(b geometry.BoundingBox, places int32) []decimal.Decimal {
	out := make([]decimal.Decimal, 0, 4)
	for _, v := range b.GetAsArray() {
		out = append(out, Round(v, places))
	}
	return out
}

func WriteManifest(filePath string, m *Manifest) error {
	// Outputting a formatted json file
	e, err := json.MarshalIndent(m, "", "\t")
	if err != nil {
		return err
	}

	if err := os.WriteFile(filePath, e, 0644); err != nil {
		return fmt.Errorf("cannot write manifest: %w", err)
	}
	return nil
}

func ReadManifest(filePath string) (*Manifest, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var m Manifest
	if err := json.Unmarshal(content, &m); err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}
	return &m, nil
}

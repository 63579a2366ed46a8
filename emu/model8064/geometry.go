/*
 * SEL32 - 8064 disk geometry table
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package model8064

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Layout of one disk model.
type Geometry struct {
	Name  string // Device ID name
	Taus  uint32 // Total allocation units
	Bms   uint32 // Bit map size in sectors
	Heads uint32 // Number of heads
	Ssiz  uint32 // Sector size in words
	SPT   uint32 // Sectors per track
	Spau  uint32 // Sectors per allocation unit
	Spb   uint32 // Sectors per block
	Cyl   uint32 // Number of cylinders
	Type  uint8  // Device type code
}

const DefaultModel = "MH300"

var ErrNoModel = errors.New("unknown disk model")

// Class F disk models. Lookup returns the first match, so later
// duplicates are kept only so the table lines up with the MPX
// device ID table.
var models = []Geometry{
	{"MH040", 20000, 625, 5, 256, 16, 2, 1, 400, 0x40},
	{"MH080", 40000, 1250, 5, 256, 16, 2, 1, 800, 0x40},
	{"MH160", 80000, 1250, 10, 256, 16, 4, 1, 1600, 0x40},
	{"MH300", 76000, 2375, 19, 256, 16, 4, 1, 800, 0x40},
	{"MH340", 76000, 2375, 24, 256, 16, 4, 1, 800, 0x40},
	{"FH005", 5120, 184, 4, 256, 16, 1, 1, 64, 0x80},
	{"CD032", 8000, 250, 1, 256, 16, 2, 1, 800, 0x60},
	{"CD032", 8000, 250, 1, 256, 16, 2, 1, 800, 0x60},
	{"CD064", 8000, 250, 1, 256, 16, 2, 1, 800, 0x60},
	{"CD064", 24000, 750, 3, 256, 16, 2, 1, 800, 0x60},
	{"CD096", 8000, 250, 1, 256, 16, 2, 1, 800, 0x60},
	{"CD096", 40000, 1250, 5, 256, 16, 2, 1, 800, 0x60},
	{"MH600", 80000, 2500, 40, 256, 16, 8, 1, 800, 0x40},
	{"FM600", 80000, 2500, 40, 256, 16, 8, 1, 800, 0x40},
	{"FM600", 1600, 50, 40, 256, 16, 1, 1, 2, 0x80},
	// Small 8MB disk for testing.
	{"TEST8M", 8192, 1, 2, 256, 16, 1, 1, 256, 0x40},
}

// Number of bytes in one sector.
func (geom *Geometry) SectorBytes() int64 {
	return int64(geom.Ssiz) * 4
}

// Number of bytes in one track.
func (geom *Geometry) TrackBytes() int64 {
	return int64(geom.SPT) * geom.SectorBytes()
}

// Number of bytes in one cylinder.
func (geom *Geometry) CylinderBytes() int64 {
	return int64(geom.Heads) * geom.TrackBytes()
}

// Size of disk image in bytes.
func (geom *Geometry) Capacity() int64 {
	return int64(geom.Taus) * int64(geom.Spau) * geom.SectorBytes()
}

// Total sectors on disk.
func (geom *Geometry) Sectors() uint32 {
	return geom.Taus * geom.Spau
}

// Byte offset of a sector in the image file.
func (geom *Geometry) Offset(cyl, trk, sec uint32) int64 {
	return int64(cyl)*geom.CylinderBytes() + int64(trk)*geom.TrackBytes() +
		int64(sec)*geom.SectorBytes()
}

// Find a model by name.
func Lookup(name string) (*Geometry, error) {
	name = strings.ToUpper(name)
	for i := range models {
		if models[i].Name == name {
			geom := models[i]
			return &geom, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNoModel, name)
}

// List of model names, without duplicates, in table order.
func ModelNames() []string {
	names := []string{}
	for _, geom := range models {
		if !slices.Contains(names, geom.Name) {
			names = append(names, geom.Name)
		}
	}
	return names
}

// Every entry of the model table, duplicates included.
func Models() []Geometry {
	list := make([]Geometry, len(models))
	copy(list, models)
	return list
}

/*
 * SEL32 - 8064 disk image tool
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

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/alecthomas/kong"
	"github.com/kisom/goutils/die"
	"github.com/rcornwell/sel32/emu/model8064"
	"github.com/rcornwell/sel32/util/disk"
	"github.com/rcornwell/sel32/util/hex"
)

// Passed to every command's Run.
type globals struct {
	out io.Writer
}

type createCmd struct {
	Model string `default:"MH300" help:"Disk model."`
	Image string `arg:"" help:"Image file to create."`
}

type infoCmd struct {
	Model string `default:"MH300" help:"Disk model."`
	Image string `arg:"" type:"existingfile" help:"Image file."`
}

type dumpCmd struct {
	Model string `default:"MH300" help:"Disk model."`
	Cyl   uint32 `help:"Starting cylinder."`
	Trk   uint32 `help:"Starting track."`
	Sec   uint32 `help:"Starting sector."`
	Count int    `default:"1" help:"Number of sectors."`
	Image string `arg:"" type:"existingfile" help:"Image file."`
}

type loadCmd struct {
	Model string `default:"MH300" help:"Disk model."`
	Cyl   uint32 `help:"Starting cylinder."`
	Trk   uint32 `help:"Starting track."`
	Sec   uint32 `help:"Starting sector."`
	Image string `arg:"" type:"existingfile" help:"Image file."`
	Data  string `arg:"" type:"existingfile" help:"File to copy onto the image."`
}

type modelsCmd struct{}

// Sector address within a geometry.
func checkAddress(geom *model8064.Geometry, cyl, trk, sec uint32) error {
	if cyl >= geom.Cyl || trk >= geom.Heads || sec >= geom.SPT {
		return fmt.Errorf("address %d/%d/%d outside %s, %d cylinders %d heads %d sectors",
			cyl, trk, sec, geom.Name, geom.Cyl, geom.Heads, geom.SPT)
	}
	return nil
}

// Step to next sector, false past end of disk.
func nextSector(geom *model8064.Geometry, cyl, trk, sec *uint32) bool {
	*sec++
	if *sec < geom.SPT {
		return true
	}
	*sec = 0
	*trk++
	if *trk < geom.Heads {
		return true
	}
	*trk = 0
	*cyl++
	return *cyl < geom.Cyl
}

func (c *createCmd) Run(g *globals) error {
	geom, err := model8064.Lookup(c.Model)
	if err != nil {
		return err
	}
	if err := disk.Create(c.Image, geom.Capacity()); err != nil {
		return err
	}
	fmt.Fprintf(g.out, "%s: %s %d bytes\n", c.Image, geom.Name, geom.Capacity())
	return nil
}

func (c *infoCmd) Run(g *globals) error {
	geom, err := model8064.Lookup(c.Model)
	if err != nil {
		return err
	}
	image := disk.NewContext()
	if err := image.Attach(c.Image, true); err != nil {
		return err
	}
	defer image.Detach()

	size, err := image.Size()
	if err != nil {
		return err
	}
	fmt.Fprintf(g.out, "%s: %d bytes\n", c.Image, size)
	fmt.Fprintf(g.out, "%s: %d cylinders %d heads %d sectors of %d bytes, type %02x\n",
		geom.Name, geom.Cyl, geom.Heads, geom.SPT, geom.SectorBytes(), geom.Type)
	fmt.Fprintf(g.out, "capacity %d bytes, %d allocation units\n", geom.Capacity(), geom.Taus)
	if size != geom.Capacity() {
		fmt.Fprintf(g.out, "image size differs from model by %d bytes\n", size-geom.Capacity())
	}

	for _, model := range model8064.Models() {
		if model.Capacity() == size && model.Name != geom.Name {
			fmt.Fprintf(g.out, "size matches %s\n", model.Name)
		}
	}
	return nil
}

func (c *dumpCmd) Run(g *globals) error {
	geom, err := model8064.Lookup(c.Model)
	if err != nil {
		return err
	}
	if err := checkAddress(geom, c.Cyl, c.Trk, c.Sec); err != nil {
		return err
	}
	image := disk.NewContext()
	if err := image.Attach(c.Image, true); err != nil {
		return err
	}
	defer image.Detach()

	buf := make([]byte, geom.SectorBytes())
	cyl, trk, sec := c.Cyl, c.Trk, c.Sec
	for n := range c.Count {
		if n != 0 && !nextSector(geom, &cyl, &trk, &sec) {
			break
		}
		offset := geom.Offset(cyl, trk, sec)
		if err := image.Seek(offset); err != nil {
			return err
		}
		if err := image.ReadSector(buf); err != nil {
			return err
		}
		fmt.Fprintf(g.out, "cyl %d trk %d sec %d\n", cyl, trk, sec)
		for i := 0; i < len(buf); i += 16 {
			fmt.Fprintln(g.out, hex.DumpLine(offset+int64(i), buf[i:i+16]))
		}
	}
	return nil
}

func (c *loadCmd) Run(g *globals) error {
	geom, err := model8064.Lookup(c.Model)
	if err != nil {
		return err
	}
	if err := checkAddress(geom, c.Cyl, c.Trk, c.Sec); err != nil {
		return err
	}
	data, err := os.ReadFile(c.Data)
	if err != nil {
		return err
	}
	image := disk.NewContext()
	if err := image.Attach(c.Image, false); err != nil {
		return err
	}
	defer image.Detach()

	size := int(geom.SectorBytes())
	cyl, trk, sec := c.Cyl, c.Trk, c.Sec
	sectors := 0
	for len(data) > 0 {
		if sectors != 0 && !nextSector(geom, &cyl, &trk, &sec) {
			return errors.New("data runs past end of disk")
		}
		buf := make([]byte, size)
		n := copy(buf, data)
		data = data[n:]
		if err := image.Seek(geom.Offset(cyl, trk, sec)); err != nil {
			return err
		}
		if err := image.WriteSector(buf); err != nil {
			return err
		}
		sectors++
	}
	fmt.Fprintf(g.out, "%s: wrote %d sectors at %d/%d/%d\n", c.Image, sectors, c.Cyl, c.Trk, c.Sec)
	return nil
}

func (c *modelsCmd) Run(g *globals) error {
	tw := tabwriter.NewWriter(g.out, 0, 8, 1, ' ', 0)
	fmt.Fprintln(tw, "MODEL\tCYL\tHEADS\tSPT\tBYTES\tTYPE")
	seen := map[string]bool{}
	for _, geom := range model8064.Models() {
		if seen[geom.Name] {
			continue
		}
		seen[geom.Name] = true
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%02x\n",
			geom.Name, geom.Cyl, geom.Heads, geom.SPT, geom.Capacity(), geom.Type)
	}
	return tw.Flush()
}

func main() {
	var cli struct {
		Create createCmd `cmd:"" help:"Create an empty disk image."`
		Info   infoCmd   `cmd:"" help:"Show geometry of a disk image."`
		Dump   dumpCmd   `cmd:"" help:"Dump sectors of a disk image."`
		Load   loadCmd   `cmd:"" help:"Copy a file onto sectors of a disk image."`
		Models modelsCmd `cmd:"" help:"List disk models."`
	}

	ctx := kong.Parse(&cli,
		kong.Name("hsdpimg"),
		kong.Description("Manage SEL32 8064 disk images."))
	die.If(ctx.Run(&globals{out: os.Stdout}))
}

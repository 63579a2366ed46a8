/*
 * SEL32 - Disk image backing store.
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

package disk

import (
	"errors"
	"fmt"
	"io"
	"os"
)

var (
	ErrNotAttached = errors.New("disk not attached")     // No file attached.
	ErrReadOnly    = errors.New("disk write protected")  // Attached read only.
	ErrShortSector = errors.New("short sector transfer") // Sector not fully transferred.
	ErrAttached    = errors.New("disk already attached") // Must detach first.
	ErrLocked      = errors.New("disk image in use")     // Another process has image.
)

// Flat file of fixed size sectors.
type Context struct {
	file     *os.File // File handle
	name     string   // Name of attached file
	readOnly bool     // Writes not allowed
	position int64    // Current byte offset
}

func NewContext() *Context {
	return &Context{}
}

// Check if file attached.
func (disk *Context) Attached() bool {
	return disk.file != nil
}

// Check if disk is write protected.
func (disk *Context) ReadOnly() bool {
	return disk.readOnly
}

// Name of attached file.
func (disk *Context) FileName() string {
	return disk.name
}

// Current byte offset.
func (disk *Context) Position() int64 {
	return disk.position
}

// Attach file to disk context. Writable images are created if missing.
func (disk *Context) Attach(fileName string, readOnly bool) error {
	if disk.file != nil {
		return fmt.Errorf("%w: %s", ErrAttached, disk.name)
	}

	var file *os.File
	var err error
	if readOnly {
		file, err = os.Open(fileName)
	} else {
		file, err = os.OpenFile(fileName, os.O_RDWR|os.O_CREATE, 0o644)
	}
	if err != nil {
		return err
	}

	if err := lockFile(file, readOnly); err != nil {
		file.Close()
		return fmt.Errorf("%w: %s: %w", ErrLocked, fileName, err)
	}

	disk.file = file
	disk.name = fileName
	disk.readOnly = readOnly
	disk.position = 0
	return nil
}

// Detach disk file.
func (disk *Context) Detach() error {
	if disk.file == nil {
		return ErrNotAttached
	}
	unlockFile(disk.file)
	err := disk.file.Close()
	disk.file = nil
	disk.name = ""
	disk.readOnly = false
	disk.position = 0
	return err
}

// Position disk at byte offset.
func (disk *Context) Seek(offset int64) error {
	if disk.file == nil {
		return ErrNotAttached
	}
	pos, err := disk.file.Seek(offset, io.SeekStart)
	if err != nil {
		return err
	}
	disk.position = pos
	return nil
}

// Read one sector at current position.
func (disk *Context) ReadSector(buf []byte) error {
	if disk.file == nil {
		return ErrNotAttached
	}
	n, err := io.ReadFull(disk.file, buf)
	disk.position += int64(n)
	if err != nil {
		return fmt.Errorf("%w: read %d of %d at %d: %w", ErrShortSector, n, len(buf), disk.position-int64(n), err)
	}
	return nil
}

// Write one sector at current position.
func (disk *Context) WriteSector(buf []byte) error {
	if disk.file == nil {
		return ErrNotAttached
	}
	if disk.readOnly {
		return ErrReadOnly
	}
	n, err := disk.file.Write(buf)
	disk.position += int64(n)
	if err != nil {
		return fmt.Errorf("%w: wrote %d of %d: %w", ErrShortSector, n, len(buf), err)
	}
	return nil
}

// Size of attached image in bytes.
func (disk *Context) Size() (int64, error) {
	if disk.file == nil {
		return 0, ErrNotAttached
	}
	info, err := disk.file.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// Create a zero filled image of size bytes.
func Create(fileName string, size int64) error {
	file, err := os.OpenFile(fileName, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if err := file.Truncate(size); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

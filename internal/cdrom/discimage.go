/*
 * psxcore - CDROM Backend implementation: raw BIN disc images.
 *
 * Copyright (c) 2026, psxcore contributors
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

package cdrom

import (
	"fmt"
	"os"
)

// rawSectorSize is the 2352-byte raw CD sector layout mode 2 BIN images
// use: a 16-byte sync/header/subheader followed by 2048 bytes of user
// data and 288 bytes of ECC/EDC, which this backend skips over.
const (
	rawSectorSize  = 2352
	userDataOffset = 24
	userDataSize   = 2048
)

// DiscImage implements Backend by reading sectors out of a raw BIN image
// on disk, addressed the same MSF way SetLoc leaves in CDROM.msfM/S/F.
type DiscImage struct {
	file *os.File
	size int64
}

// OpenDiscImage opens path as a raw BIN image. A nil *DiscImage (returned
// alongside a non-nil error) is never handed back; callers that want
// headless "no disc" behavior should pass a nil Backend to cdrom.New
// instead.
func OpenDiscImage(path string) (*DiscImage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cdrom: open %s: %w", path, err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("cdrom: stat %s: %w", path, err)
	}
	return &DiscImage{file: f, size: st.Size()}, nil
}

// Close releases the underlying file handle.
func (d *DiscImage) Close() error { return d.file.Close() }

// HasDisc implements Backend.
func (d *DiscImage) HasDisc() bool { return d != nil }

// ReadSector implements Backend, converting a BCD MSF address to a byte
// offset in the image (LBA*2352, skipping the 2-second/150-sector
// pregap and the sector's own sync/header/subheader).
func (d *DiscImage) ReadSector(minute, second, frame byte) ([2048]byte, error) {
	var out [2048]byte
	lba := msfToLBA(minute, second, frame)
	if lba < 0 {
		return out, fmt.Errorf("cdrom: MSF %02x:%02x:%02x precedes start of disc", minute, second, frame)
	}
	offset := int64(lba)*rawSectorSize + userDataOffset
	if offset+userDataSize > d.size {
		return out, fmt.Errorf("cdrom: LBA %d past end of image", lba)
	}
	if _, err := d.file.ReadAt(out[:], offset); err != nil {
		return out, fmt.Errorf("cdrom: read LBA %d: %w", lba, err)
	}
	return out, nil
}

func msfToLBA(minute, second, frame byte) int {
	m, s, f := bcdToBin(minute), bcdToBin(second), bcdToBin(frame)
	return (m*60+s)*75 + f - 150
}

func bcdToBin(v byte) int {
	return int(v>>4)*10 + int(v&0x0F)
}

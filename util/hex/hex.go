/*
 * SEL32 - Hexadecimal formatting
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

package hex

import "strings"

var hexMap = "0123456789abcdef"

// Full words as eight digits each.
func FormatWord(str *strings.Builder, space bool, word []uint32) {
	for i, full := range word {
		if space && i != 0 {
			str.WriteByte(' ')
		}
		for shift := 28; shift >= 0; shift -= 4 {
			str.WriteByte(hexMap[(full>>shift)&0xf])
		}
	}
}

// Half words as four digits each.
func FormatHalf(str *strings.Builder, space bool, half []uint16) {
	for i, word := range half {
		if space && i != 0 {
			str.WriteByte(' ')
		}
		for shift := 12; shift >= 0; shift -= 4 {
			str.WriteByte(hexMap[(word>>shift)&0xf])
		}
	}
}

// Bytes as two digits each.
func FormatBytes(str *strings.Builder, space bool, data []uint8) {
	for i, by := range data {
		if space && i != 0 {
			str.WriteByte(' ')
		}
		FormatByte(str, by)
	}
}

func FormatByte(str *strings.Builder, data byte) {
	str.WriteByte(hexMap[(data>>4)&0xf])
	str.WriteByte(hexMap[data&0xf])
}

// Printable characters of data, '.' for the rest.
func FormatChars(str *strings.Builder, data []uint8) {
	for _, by := range data {
		if by < 0x20 || by > 0x7e {
			by = '.'
		}
		str.WriteByte(by)
	}
}

// Classic dump line, address, up to 16 bytes and their characters.
func DumpLine(addr int64, data []uint8) string {
	var str strings.Builder
	for shift := 28; shift >= 0; shift -= 4 {
		str.WriteByte(hexMap[(addr>>shift)&0xf])
	}
	str.WriteString(": ")
	for i := range 16 {
		if i < len(data) {
			FormatByte(&str, data[i])
		} else {
			str.WriteString("  ")
		}
		str.WriteByte(' ')
		if i == 7 {
			str.WriteByte(' ')
		}
	}
	str.WriteByte('|')
	FormatChars(&str, data)
	str.WriteByte('|')
	return str.String()
}

// Copyright (C) 2020 Markus L. Noga
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package convert

import (
	"errors"
)

// Conversion error kinds. Every failure of a run wraps exactly one of these,
// so callers can match with errors.Is while the message carries the detail.
var (
	ErrInputOpenFailed      = errors.New("cannot open input file")
	ErrUnsupportedPixelType = errors.New("only FP32 (BITPIX -32) files are supported")
	ErrUnsupportedRank      = errors.New("only 2D, 3D and 4D cubes are supported")
	ErrHeaderReadFailed     = errors.New("cannot read input header")
	ErrOutputCreateFailed   = errors.New("cannot create output file")
	ErrOutputWriteFailed    = errors.New("cannot write output file")
	ErrOutOfMemory          = errors.New("cannot allocate conversion buffers")
)

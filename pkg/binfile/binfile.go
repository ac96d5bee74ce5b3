// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package binfile

import (
	"bytes"
	"encoding/binary"
	"os"

	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
)

// ============================================================================
// Binary File Format
// ============================================================================

// BINFILE_MAJOR_VERSION gives the major version of the binary file format.
// Files with a different major version cannot be read.
const BINFILE_MAJOR_VERSION uint16 = 1

// BINFILE_MINOR_VERSION gives the minor version of the binary file format.  The
// expected interpretation is that older versions are compatible with newer
// ones, but not vice-versa.
const BINFILE_MINOR_VERSION uint16 = 0

// HLSYNBIN is used as the file identifier for snapshot files.  This just helps
// us identify actual snapshots from corrupted (or unrelated) files.
var HLSYNBIN = [8]byte{'h', 'l', 's', 'y', 'n', 'b', 'i', 'n'}

// Header provides a structured header for the binary file format, supporting
// versioning.
type Header struct {
	Identifier   [8]byte
	MajorVersion uint16
	MinorVersion uint16
}

// HEADER_SIZE is the number of bytes occupied by an encoded header.
const HEADER_SIZE = 12

// MarshalBinary converts a header into a sequence of bytes.
func (p *Header) MarshalBinary() ([]byte, error) {
	var buffer [HEADER_SIZE]byte
	//
	copy(buffer[:8], p.Identifier[:])
	binary.BigEndian.PutUint16(buffer[8:10], p.MajorVersion)
	binary.BigEndian.PutUint16(buffer[10:12], p.MinorVersion)
	//
	return buffer[:], nil
}

// UnmarshalBinary initialises a header from the leading bytes of a file.
func (p *Header) UnmarshalBinary(data []byte) error {
	if len(data) < HEADER_SIZE {
		return errors.New("malformed binary file")
	}
	//
	copy(p.Identifier[:], data[:8])
	p.MajorVersion = binary.BigEndian.Uint16(data[8:10])
	p.MinorVersion = binary.BigEndian.Uint16(data[10:12])
	//
	return nil
}

// IsCompatible determines whether a given binary file is compatible with this
// version of hlsyn.
func (p *Header) IsCompatible() bool {
	return p.Identifier == HLSYNBIN &&
		p.MajorVersion == BINFILE_MAJOR_VERSION &&
		p.MinorVersion <= BINFILE_MINOR_VERSION
}

// IsBinaryFile checks whether the given data begins with the expected
// identifier.
func IsBinaryFile(data []byte) bool {
	return len(data) >= len(HLSYNBIN) && bytes.Equal(data[:len(HLSYNBIN)], HLSYNBIN[:])
}

// MarshalBinary converts a snapshot into a sequence of bytes: the header,
// followed by the msgpack encoding of the snapshot itself.
func (p *Snapshot) MarshalBinary() ([]byte, error) {
	var (
		buffer bytes.Buffer
		header = Header{HLSYNBIN, BINFILE_MAJOR_VERSION, BINFILE_MINOR_VERSION}
	)
	//
	headerBytes, err := header.MarshalBinary()
	if err != nil {
		return nil, err
	}
	//
	buffer.Write(headerBytes)
	//
	if err := msgpack.NewEncoder(&buffer).Encode(p); err != nil {
		return nil, errors.Wrap(err, "encoding snapshot")
	}
	//
	return buffer.Bytes(), nil
}

// UnmarshalBinary initialises a snapshot from a given set of data bytes.  This
// should match exactly the encoding above.
func (p *Snapshot) UnmarshalBinary(data []byte) error {
	var header Header
	//
	if err := header.UnmarshalBinary(data); err != nil {
		return err
	} else if !header.IsCompatible() {
		return errors.Errorf("incompatible binary file was v%d.%d, but expected v%d.%d",
			header.MajorVersion, header.MinorVersion, BINFILE_MAJOR_VERSION, BINFILE_MINOR_VERSION)
	}
	//
	if err := msgpack.NewDecoder(bytes.NewReader(data[HEADER_SIZE:])).Decode(p); err != nil {
		return errors.Wrap(err, "decoding snapshot")
	}
	//
	return nil
}

// WriteFile writes a snapshot to disk.
func WriteFile(filename string, snapshot *Snapshot) error {
	data, err := snapshot.MarshalBinary()
	if err != nil {
		return err
	}
	//
	return errors.Wrapf(os.WriteFile(filename, data, 0644), "writing %s", filename)
}

// ReadFile reads a snapshot from disk.
func ReadFile(filename string) (*Snapshot, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", filename)
	} else if !IsBinaryFile(data) {
		return nil, errors.Errorf("%s is not a snapshot file", filename)
	}
	//
	var snapshot Snapshot
	//
	if err := snapshot.UnmarshalBinary(data); err != nil {
		return nil, errors.Wrapf(err, "reading %s", filename)
	}
	//
	return &snapshot, nil
}

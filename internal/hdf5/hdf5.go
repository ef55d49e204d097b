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

// Package hdf5 is a thin sink over the system HDF5 C library, covering the
// group, dataset and attribute surface the converter needs: little-endian
// FP32 and int64 datasets, scalar fixed-length string attributes, and
// contiguous hyperslab writes. Read-back entry points exist so tests can
// verify produced files.
package hdf5

/*
#cgo LDFLAGS: -lhdf5
#include <stdlib.h>
#include <hdf5.h>
*/
import "C"

import (
	"fmt"
	"unsafe"
)

// Type selects the on-disk element type of a dataset.
type Type int

const (
	Float32LE Type = iota // IEEE 754 single precision, little-endian
	Int64LE               // two's complement 64-bit integer, little-endian
)

// fileType returns the on-disk datatype identifier.
func (t Type) fileType() C.hid_t {
	if t == Int64LE {
		return C.H5T_STD_I64LE
	}
	return C.H5T_IEEE_F32LE
}

// StringAttrSize is the fixed length of string attribute values.
const StringAttrSize = 256

// File is an open HDF5 container file.
type File struct {
	id C.hid_t
}

// Group is an open group within a file.
type Group struct {
	id C.hid_t
}

// Dataset is an open dataset within a file.
type Dataset struct {
	id C.hid_t
}

// Create creates (or truncates) the named file.
func Create(fileName string) (*File, error) {
	cname := C.CString(fileName)
	defer C.free(unsafe.Pointer(cname))
	id := C.H5Fcreate(cname, C.H5F_ACC_TRUNC, C.H5P_DEFAULT, C.H5P_DEFAULT)
	if id < 0 {
		return nil, fmt.Errorf("hdf5: cannot create file %s", fileName)
	}
	return &File{id: id}, nil
}

// Open opens the named file read-only.
func Open(fileName string) (*File, error) {
	cname := C.CString(fileName)
	defer C.free(unsafe.Pointer(cname))
	id := C.H5Fopen(cname, C.H5F_ACC_RDONLY, C.H5P_DEFAULT)
	if id < 0 {
		return nil, fmt.Errorf("hdf5: cannot open file %s", fileName)
	}
	return &File{id: id}, nil
}

// Close closes the file. Groups and datasets must be closed beforehand.
// Closing twice is a no-op.
func (f *File) Close() error {
	if f.id < 0 {
		return nil
	}
	id := f.id
	f.id = -1
	if C.H5Fclose(id) < 0 {
		return fmt.Errorf("hdf5: cannot close file")
	}
	return nil
}

// CreateGroup creates a group directly under the file root.
func (f *File) CreateGroup(name string) (*Group, error) { return createGroup(f.id, name) }

// OpenGroup opens an existing group by path relative to the file root.
func (f *File) OpenGroup(name string) (*Group, error) { return openGroup(f.id, name) }

// CreateGroup creates a subgroup of this group.
func (g *Group) CreateGroup(name string) (*Group, error) { return createGroup(g.id, name) }

// OpenGroup opens an existing subgroup of this group.
func (g *Group) OpenGroup(name string) (*Group, error) { return openGroup(g.id, name) }

// Close closes the group. Closing twice is a no-op.
func (g *Group) Close() error {
	if g.id < 0 {
		return nil
	}
	id := g.id
	g.id = -1
	if C.H5Gclose(id) < 0 {
		return fmt.Errorf("hdf5: cannot close group")
	}
	return nil
}

func createGroup(loc C.hid_t, name string) (*Group, error) {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	id := C.H5Gcreate2(loc, cname, C.H5P_DEFAULT, C.H5P_DEFAULT, C.H5P_DEFAULT)
	if id < 0 {
		return nil, fmt.Errorf("hdf5: cannot create group %s", name)
	}
	return &Group{id: id}, nil
}

func openGroup(loc C.hid_t, name string) (*Group, error) {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	id := C.H5Gopen2(loc, cname, C.H5P_DEFAULT)
	if id < 0 {
		return nil, fmt.Errorf("hdf5: cannot open group %s", name)
	}
	return &Group{id: id}, nil
}

// HasAttribute reports whether the group carries an attribute of that name.
func (g *Group) HasAttribute(name string) bool {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	return C.H5Aexists(g.id, cname) > 0
}

// WriteStringAttribute creates a scalar string attribute on the group.
// The value is stored as a fixed-length 256-character C string, null padded;
// longer values are truncated.
func (g *Group) WriteStringAttribute(name, value string) error {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))

	sid := C.H5Screate(C.H5S_SCALAR)
	if sid < 0 {
		return fmt.Errorf("hdf5: cannot create scalar dataspace for attribute %s", name)
	}
	defer C.H5Sclose(sid)

	tid := C.H5Tcopy(C.H5T_C_S1)
	if tid < 0 {
		return fmt.Errorf("hdf5: cannot create string type for attribute %s", name)
	}
	defer C.H5Tclose(tid)
	C.H5Tset_size(tid, StringAttrSize)
	C.H5Tset_strpad(tid, C.H5T_STR_NULLPAD)

	aid := C.H5Acreate2(g.id, cname, tid, sid, C.H5P_DEFAULT, C.H5P_DEFAULT)
	if aid < 0 {
		return fmt.Errorf("hdf5: cannot create attribute %s", name)
	}
	defer C.H5Aclose(aid)

	buf := make([]byte, StringAttrSize)
	copy(buf, value)
	if C.H5Awrite(aid, tid, unsafe.Pointer(&buf[0])) < 0 {
		return fmt.Errorf("hdf5: cannot write attribute %s", name)
	}
	return nil
}

// ReadStringAttribute returns the value of a string attribute on the group,
// trimmed at the first null byte.
func (g *Group) ReadStringAttribute(name string) (string, error) {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))

	aid := C.H5Aopen(g.id, cname, C.H5P_DEFAULT)
	if aid < 0 {
		return "", fmt.Errorf("hdf5: cannot open attribute %s", name)
	}
	defer C.H5Aclose(aid)

	tid := C.H5Aget_type(aid)
	if tid < 0 {
		return "", fmt.Errorf("hdf5: cannot read type of attribute %s", name)
	}
	defer C.H5Tclose(tid)

	size := C.H5Tget_size(tid)
	buf := make([]byte, int(size)+1)
	if C.H5Aread(aid, tid, unsafe.Pointer(&buf[0])) < 0 {
		return "", fmt.Errorf("hdf5: cannot read attribute %s", name)
	}
	for i, b := range buf {
		if b == 0 {
			return string(buf[:i]), nil
		}
	}
	return string(buf), nil
}

// createDataspace builds a simple dataspace for the given extents. A nil or
// empty dims yields a scalar dataspace.
func createDataspace(dims []uint64) (C.hid_t, error) {
	if len(dims) == 0 {
		sid := C.H5Screate(C.H5S_SCALAR)
		if sid < 0 {
			return -1, fmt.Errorf("hdf5: cannot create scalar dataspace")
		}
		return sid, nil
	}
	cdims := make([]C.hsize_t, len(dims))
	for i, d := range dims {
		cdims[i] = C.hsize_t(d)
	}
	sid := C.H5Screate_simple(C.int(len(dims)), &cdims[0], nil)
	if sid < 0 {
		return -1, fmt.Errorf("hdf5: cannot create dataspace of rank %d", len(dims))
	}
	return sid, nil
}

// CreateDataset creates a dataset under the group with the given on-disk
// type and extents. Empty dims create a scalar dataset.
func (g *Group) CreateDataset(name string, typ Type, dims []uint64) (*Dataset, error) {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))

	sid, err := createDataspace(dims)
	if err != nil {
		return nil, err
	}
	defer C.H5Sclose(sid)

	id := C.H5Dcreate2(g.id, cname, typ.fileType(), sid, C.H5P_DEFAULT, C.H5P_DEFAULT, C.H5P_DEFAULT)
	if id < 0 {
		return nil, fmt.Errorf("hdf5: cannot create dataset %s", name)
	}
	return &Dataset{id: id}, nil
}

// OpenDataset opens an existing dataset under the group.
func (g *Group) OpenDataset(name string) (*Dataset, error) {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	id := C.H5Dopen2(g.id, cname, C.H5P_DEFAULT)
	if id < 0 {
		return nil, fmt.Errorf("hdf5: cannot open dataset %s", name)
	}
	return &Dataset{id: id}, nil
}

// Close closes the dataset. Closing twice is a no-op.
func (d *Dataset) Close() error {
	if d.id < 0 {
		return nil
	}
	id := d.id
	d.id = -1
	if C.H5Dclose(id) < 0 {
		return fmt.Errorf("hdf5: cannot close dataset")
	}
	return nil
}

// WriteFloat32 writes the entire dataset from the given values.
func (d *Dataset) WriteFloat32(data []float32) error {
	if C.H5Dwrite(d.id, C.H5T_NATIVE_FLOAT, C.H5S_ALL, C.H5S_ALL, C.H5P_DEFAULT, unsafe.Pointer(&data[0])) < 0 {
		return fmt.Errorf("hdf5: cannot write float dataset")
	}
	return nil
}

// WriteInt64 writes the entire dataset from the given values.
func (d *Dataset) WriteInt64(data []int64) error {
	if C.H5Dwrite(d.id, C.H5T_NATIVE_INT64, C.H5S_ALL, C.H5S_ALL, C.H5P_DEFAULT, unsafe.Pointer(&data[0])) < 0 {
		return fmt.Errorf("hdf5: cannot write int64 dataset")
	}
	return nil
}

// WriteHyperslabFloat32 writes data into the contiguous hyperslab selected
// by start and count, whose element count must equal len(data).
func (d *Dataset) WriteHyperslabFloat32(data []float32, start, count []uint64) error {
	fileSpace := C.H5Dget_space(d.id)
	if fileSpace < 0 {
		return fmt.Errorf("hdf5: cannot read dataset dataspace")
	}
	defer C.H5Sclose(fileSpace)

	cstart := make([]C.hsize_t, len(start))
	ccount := make([]C.hsize_t, len(count))
	for i := range start {
		cstart[i] = C.hsize_t(start[i])
		ccount[i] = C.hsize_t(count[i])
	}
	if C.H5Sselect_hyperslab(fileSpace, C.H5S_SELECT_SET, &cstart[0], nil, &ccount[0], nil) < 0 {
		return fmt.Errorf("hdf5: cannot select hyperslab")
	}

	memDims := []C.hsize_t{C.hsize_t(len(data))}
	memSpace := C.H5Screate_simple(1, &memDims[0], nil)
	if memSpace < 0 {
		return fmt.Errorf("hdf5: cannot create memory dataspace")
	}
	defer C.H5Sclose(memSpace)

	if C.H5Dwrite(d.id, C.H5T_NATIVE_FLOAT, memSpace, fileSpace, C.H5P_DEFAULT, unsafe.Pointer(&data[0])) < 0 {
		return fmt.Errorf("hdf5: cannot write hyperslab")
	}
	return nil
}

// numPoints returns the dataset's total element count.
func (d *Dataset) numPoints() (int, error) {
	sid := C.H5Dget_space(d.id)
	if sid < 0 {
		return 0, fmt.Errorf("hdf5: cannot read dataset dataspace")
	}
	defer C.H5Sclose(sid)
	return int(C.H5Sget_simple_extent_npoints(sid)), nil
}

// Dims returns the dataset's extents; scalar datasets return an empty slice.
func (d *Dataset) Dims() ([]uint64, error) {
	sid := C.H5Dget_space(d.id)
	if sid < 0 {
		return nil, fmt.Errorf("hdf5: cannot read dataset dataspace")
	}
	defer C.H5Sclose(sid)

	rank := int(C.H5Sget_simple_extent_ndims(sid))
	if rank < 0 {
		return nil, fmt.Errorf("hdf5: cannot read dataspace rank")
	}
	if rank == 0 {
		return []uint64{}, nil
	}
	cdims := make([]C.hsize_t, rank)
	if C.H5Sget_simple_extent_dims(sid, &cdims[0], nil) < 0 {
		return nil, fmt.Errorf("hdf5: cannot read dataspace extents")
	}
	dims := make([]uint64, rank)
	for i, cd := range cdims {
		dims[i] = uint64(cd)
	}
	return dims, nil
}

// ReadFloat32 reads the entire dataset.
func (d *Dataset) ReadFloat32() ([]float32, error) {
	n, err := d.numPoints()
	if err != nil {
		return nil, err
	}
	data := make([]float32, n)
	if C.H5Dread(d.id, C.H5T_NATIVE_FLOAT, C.H5S_ALL, C.H5S_ALL, C.H5P_DEFAULT, unsafe.Pointer(&data[0])) < 0 {
		return nil, fmt.Errorf("hdf5: cannot read float dataset")
	}
	return data, nil
}

// ReadInt64 reads the entire dataset.
func (d *Dataset) ReadInt64() ([]int64, error) {
	n, err := d.numPoints()
	if err != nil {
		return nil, err
	}
	data := make([]int64, n)
	if C.H5Dread(d.id, C.H5T_NATIVE_INT64, C.H5S_ALL, C.H5S_ALL, C.H5P_DEFAULT, unsafe.Pointer(&data[0])) < 0 {
		return nil, fmt.Errorf("hdf5: cannot read int64 dataset")
	}
	return data, nil
}

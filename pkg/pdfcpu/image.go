/*
Copyright 2021 The pdfcpu Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package pdfcpu

import (
	"io"
	"sort"

	"github.com/inkmethod/ocrsandwich/pkg/pdfcpu/model"
	"github.com/inkmethod/ocrsandwich/pkg/pdfcpu/types"
	"github.com/pkg/errors"
)

// Images returns all embedded images of ctx, one map per page that has any,
// keyed by object number.
func Images(ctx *model.Context, selectedPages types.IntSet) ([]map[int]model.Image, error) {
	pageNrs := []int{}
	for k, v := range selectedPages {
		if !v {
			continue
		}
		pageNrs = append(pageNrs, k)
	}
	sort.Ints(pageNrs)

	mm := []map[int]model.Image{}

	for _, i := range pageNrs {
		m, err := ExtractPageImages(ctx, i, true)
		if err != nil {
			return nil, err
		}
		if len(m) == 0 {
			continue
		}
		mm = append(mm, m)
	}

	return mm, nil
}

func validateImageDimensions(ctx *model.Context, objNr, w, h int) error {
	imgObj := ctx.Optimize.ImageObjects[objNr]
	if imgObj == nil {
		return errors.Errorf("pdfcpu: unknown image object for objNr=%d", objNr)
	}

	d := imgObj.ImageDict

	width := d.IntEntry("Width")
	height := d.IntEntry("Height")

	if width == nil || height == nil {
		return errors.New("pdfcpu: corrupt image dict")
	}

	if *width != w || *height != h {
		return errors.Errorf("pdfcpu: invalid image dimensions, want(%d,%d), got(%d,%d)", w, h, *width, *height)
	}

	return nil
}

// UpdateImagesByObjNr replaces an XObject.
func UpdateImagesByObjNr(ctx *model.Context, rd io.Reader, objNr int) error {

	sd, w, h, err := model.CreateImageStreamDict(ctx.XRefTable, rd)
	if err != nil {
		return err
	}

	if err := validateImageDimensions(ctx, objNr, w, h); err != nil {
		return err
	}

	genNr := 0
	entry, ok := ctx.FindTableEntry(objNr, genNr)
	if !ok {
		errors.Errorf("pdfcpu: invalid objNr=%d", objNr)
	}

	entry.Object = *sd

	return nil
}

func isInheritedXObjectResource(inhRes types.Dict, id string) bool {
	if inhRes == nil {
		return false
	}

	d := inhRes.DictEntry("XObject")
	if d == nil {
		return false
	}

	for resId := range d {
		if resId == id {
			return true
		}
	}

	return false
}

// UpdateImagesByPageNrAndId replaces the XObject referenced by pageNr and id.
func UpdateImagesByPageNrAndId(ctx *model.Context, rd io.Reader, pageNr int, id string) error {

	imgIndRef, w, h, err := model.CreateImageResource(ctx.XRefTable, rd)
	if err != nil {
		return err
	}

	d, _, inhPAttrs, err := ctx.PageDict(pageNr, false)
	if err != nil {
		return err
	}

	obj, found := d.Find("Resources")
	if !found {
		if isInheritedXObjectResource(inhPAttrs.Resources, id) {
			d1 := types.NewDict()
			d1[id] = *imgIndRef
			d2 := types.NewDict()
			d2["XObject"] = d1
			d["Resources"] = d2
			return nil
		}
		return errors.Errorf("pdfcpu: page %d: unknown resource %s\n", pageNr, id)
	}

	resDict, err := ctx.DereferenceDict(obj)
	if err != nil {
		return err
	}

	obj1, ok := resDict.Find("XObject")
	if !ok {
		if isInheritedXObjectResource(inhPAttrs.Resources, id) {
			d := types.NewDict()
			d[id] = *imgIndRef
			resDict["XObject"] = d
			return nil
		}
		return errors.Errorf("pdfcpu: page %d: unknown resource %s\n", pageNr, id)
	}

	imgResDict, err := ctx.DereferenceDict(obj1)
	if err != nil {
		return err
	}

	for resId, indRef := range imgResDict {
		if resId == id {

			ir := indRef.(types.IndirectRef)
			if err := validateImageDimensions(ctx, ir.ObjectNumber.Value(), w, h); err != nil {
				return err
			}

			imgResDict[id] = *imgIndRef
			return nil
		}
	}

	if isInheritedXObjectResource(inhPAttrs.Resources, id) {
		imgResDict[id] = *imgIndRef
		return nil
	}

	return errors.Errorf("pdfcpu: page %d: unknown resource %s\n", pageNr, id)
}

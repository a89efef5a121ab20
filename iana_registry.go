/*
Copyright 2023 Alexander Bartolomey (github@alexanderbartolomey.de)

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

package ipfix

import (
	"embed"
	"encoding/csv"
	"io"
	"strconv"

	"github.com/flowkit/ipfix-extender/iana/semantics"
	"github.com/flowkit/ipfix-extender/iana/status"
)

//go:embed hack/ipfix-information-elements.csv
var ianaCSV embed.FS

// DefaultIERegistry is seeded at process start from the embedded CSV. The
// teacher's own hack/ipfix-information-elements.csv is the full IANA
// registry; the copy embedded here is a curated subset covering commonly
// used IEs, since the full registry was not retrievable alongside this
// module's sources. ReadIERegistry can load a larger replacement at runtime.
var DefaultIERegistry IERegistry

func init() {
	f, err := ianaCSV.Open("hack/ipfix-information-elements.csv")
	if err != nil {
		panic(err)
	}
	defer f.Close()

	reg, err := ReadIERegistry(f)
	if err != nil {
		panic(err)
	}
	DefaultIERegistry = reg
}

// ReadIERegistry parses a CSV of (id,name,dataType,semantics,status) rows
// into an in-memory IERegistry, in the teacher's encoding/csv.NewReader
// style.
func ReadIERegistry(r io.Reader) (IERegistry, error) {
	csvReader := csv.NewReader(r)

	if _, err := csvReader.Read(); err != nil { // header row
		return nil, err
	}

	reg := &memoryIERegistry{
		byName: make(map[string]InformationElement),
		byId:   make(map[ieKey]InformationElement),
	}

	for {
		record, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		id, err := strconv.ParseUint(record[0], 10, 16)
		if err != nil {
			return nil, err
		}

		ie := InformationElement{
			Id:       uint16(id),
			Name:     record[1],
			DataType: DataType(record[2]),
		}

		if len(record) > 3 && record[3] != "" {
			_ = ie.Semantics.UnmarshalText([]byte(record[3]))
		} else {
			ie.Semantics = semantics.Undefined
		}
		if len(record) > 4 && record[4] != "" {
			_ = ie.Status.UnmarshalText([]byte(record[4]))
		} else {
			ie.Status = status.Current
		}

		reg.byName[ie.Name] = ie
		reg.byId[ieKey{0, ie.Id}] = ie
	}

	return reg, nil
}

package sim

import (
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/ml2hw/ml2hw/util"
)

// Port is one port of a packaged hardware module, recovered from its
// component descriptor.
type Port struct {
	Name      string
	Direction string
	Width     int
}

type componentDoc struct {
	XMLName xml.Name
	Model   struct {
		Ports struct {
			Ports []componentPort `xml:"http://www.spiritconsortium.org/XMLSchema/SPIRIT/1685-2009 port"`
		} `xml:"http://www.spiritconsortium.org/XMLSchema/SPIRIT/1685-2009 ports"`
	} `xml:"http://www.spiritconsortium.org/XMLSchema/SPIRIT/1685-2009 model"`
}

type componentPort struct {
	Name string `xml:"http://www.spiritconsortium.org/XMLSchema/SPIRIT/1685-2009 name"`
	Wire *struct {
		Direction string `xml:"http://www.spiritconsortium.org/XMLSchema/SPIRIT/1685-2009 direction"`
		Vector    *struct {
			Left  string `xml:"http://www.spiritconsortium.org/XMLSchema/SPIRIT/1685-2009 left"`
			Right string `xml:"http://www.spiritconsortium.org/XMLSchema/SPIRIT/1685-2009 right"`
		} `xml:"http://www.spiritconsortium.org/XMLSchema/SPIRIT/1685-2009 vector"`
	} `xml:"http://www.spiritconsortium.org/XMLSchema/SPIRIT/1685-2009 wire"`
}

// ParseComponentXML reads a packaged module's component descriptor and
// returns its input and output ports. A port's width is derived from its
// vector bounds as abs(left-right)+1; a port without a vector is one bit
// wide. Ports without a wire element, and directions other than in/out, are
// skipped.
func ParseComponentXML(file string) (inputs, outputs []Port, err error) {
	data, err := util.ReadFile(file)
	if err != nil {
		return nil, nil, err
	}

	var doc componentDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("failed to parse component descriptor '%s': %w", file, err)
	}

	for _, p := range doc.Model.Ports.Ports {
		if p.Wire == nil {
			continue
		}
		width := 1
		if v := p.Wire.Vector; v != nil {
			left, err := strconv.Atoi(v.Left)
			if err != nil {
				return nil, nil, fmt.Errorf("port '%s': bad vector bound '%s'", p.Name, v.Left)
			}
			right, err := strconv.Atoi(v.Right)
			if err != nil {
				return nil, nil, fmt.Errorf("port '%s': bad vector bound '%s'", p.Name, v.Right)
			}
			width = left - right
			if width < 0 {
				width = -width
			}
			width++
		}
		port := Port{Name: p.Name, Direction: p.Wire.Direction, Width: width}
		switch port.Direction {
		case "in":
			inputs = append(inputs, port)
		case "out":
			outputs = append(outputs, port)
		}
	}
	return inputs, outputs, nil
}

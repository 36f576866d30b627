package domain

// Tree is the derived view handed to solver/consumer code and exporters
type Tree struct {
	Well     string     `json:"well" yaml:"well"`
	Top      int        `json:"top" yaml:"top"`
	Segments []TreeNode `json:"segments" yaml:"segments"`
}

// TreeNode is one segment in the consumer view. Undefined geometry of
// the top segment is omitted rather than exported as a sentinel.
type TreeNode struct {
	Number           int        `json:"number" yaml:"number"`
	Branch           int        `json:"branch" yaml:"branch"`
	Outlet           *int       `json:"outlet,omitempty" yaml:"outlet,omitempty"`
	Inlets           []int      `json:"inlets,omitempty" yaml:"inlets,omitempty"`
	TotalLength      float64    `json:"total_length" yaml:"total_length"`
	Depth            float64    `json:"depth" yaml:"depth"`
	InternalDiameter *float64   `json:"internal_diameter,omitempty" yaml:"internal_diameter,omitempty"`
	Roughness        *float64   `json:"roughness,omitempty" yaml:"roughness,omitempty"`
	CrossArea        *float64   `json:"cross_area,omitempty" yaml:"cross_area,omitempty"`
	Volume           float64    `json:"volume" yaml:"volume"`
	Type             string     `json:"type" yaml:"type"`
	SpiralICD        *SpiralICD `json:"spiral_icd,omitempty" yaml:"spiral_icd,omitempty"`
	Valve            *Valve     `json:"valve,omitempty" yaml:"valve,omitempty"`
}

// DeriveTree builds the consumer view in top-down order. The set must
// be finalized.
func DeriveTree(set *SegmentSet) (*Tree, error) {
	if err := set.RequireFinalized(); err != nil {
		return nil, err
	}
	order, err := set.TopDown()
	if err != nil {
		return nil, err
	}

	tree := &Tree{
		Well:     set.Well(),
		Top:      order[0].SegmentNumber(),
		Segments: make([]TreeNode, 0, len(order)),
	}
	for _, seg := range order {
		node := TreeNode{
			Number:      seg.number,
			Branch:      seg.branch,
			Inlets:      seg.InletSegments(),
			TotalLength: seg.totalLength,
			Depth:       seg.depth,
			Volume:      seg.volume,
			Type:        seg.segmentType.String(),
			SpiralICD:   seg.spiralICD,
			Valve:       seg.valve,
		}
		if outlet, ok := seg.Outlet(); ok {
			node.Outlet = &outlet
		}
		if d, r, a, ok := seg.PipeGeometry(); ok {
			node.InternalDiameter, node.Roughness, node.CrossArea = &d, &r, &a
		}
		tree.Segments = append(tree.Segments, node)
	}
	return tree, nil
}

// SegmentSet rebuilds a finalized set from the consumer view. Omitted
// geometry of the top segment becomes InvalidValue again.
func (t *Tree) SegmentSet() (*SegmentSet, error) {
	segments := make([]*Segment, 0, len(t.Segments))
	for _, node := range t.Segments {
		segType, err := ParseSegmentType(node.Type)
		if err != nil {
			return nil, segmentErr("rebuild", node.Number, err)
		}
		f := SegmentFields{
			Number:           node.Number,
			Branch:           node.Branch,
			Outlet:           NoOutlet,
			TotalLength:      node.TotalLength,
			Depth:            node.Depth,
			InternalDiameter: valueOr(node.InternalDiameter),
			Roughness:        valueOr(node.Roughness),
			CrossArea:        valueOr(node.CrossArea),
			Volume:           node.Volume,
			DataReady:        true,
			Type:             segType,
		}
		if node.Outlet != nil {
			f.Outlet = *node.Outlet
		}
		seg, err := NewSegmentWithDevices(f, nil, node.SpiralICD, node.Valve)
		if err != nil {
			return nil, err
		}
		segments = append(segments, seg)
	}

	set, err := AssembleSegmentSet(t.Well, segments)
	if err != nil {
		return nil, err
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}
	root, err := set.Root()
	if err != nil {
		return nil, err
	}
	if root.number != t.Top {
		return nil, segmentErrf("tree", t.Top, ErrMissingRoot, "top segment is %d", root.number)
	}
	return set, nil
}

func valueOr(v *float64) float64 {
	if v == nil {
		return InvalidValue
	}
	return *v
}

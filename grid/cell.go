package grid

import (
	"strconv"
	"strings"

	"github.com/jsphweid/midgrid/constants"
	"github.com/jsphweid/midgrid/model"
	"github.com/jsphweid/midgrid/pitch"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

const decoratorMarkers = "~@:"

func isRest(token string) bool {
	return slices.Contains(constants.RestMarkers, token)
}

// ParseCell reads PITCH[~patch][@velocity][:duration]. Decorators are split
// off by their marker, so they may appear in any order, each at most once.
func ParseCell(field string) (model.NoteCell, error) {
	field = strings.TrimSpace(field)
	var cell model.NoteCell

	end := strings.IndexAny(field, decoratorMarkers)
	if end < 0 {
		end = len(field)
	}
	cell.Token = strings.TrimSpace(field[:end])
	decorators := field[end:]

	switch {
	case cell.Token == "" || cell.Token == constants.SustainMarker:
		if cell.Token == "" && decorators != "" {
			return cell, errors.Errorf("cell %q has no pitch", field)
		}
		if decorators != "" {
			return cell, errors.Errorf("sustain %q cannot carry decorators", field)
		}
		cell.Kind = model.Sustain
		return cell, nil
	case isRest(cell.Token):
		cell.Kind = model.Rest
	default:
		key, err := pitch.Parse(cell.Token)
		if err != nil {
			return cell, err
		}
		cell.Kind = model.Pitched
		cell.Pitch = key
	}

	for decorators != "" {
		marker := decorators[0]
		next := strings.IndexAny(decorators[1:], decoratorMarkers)
		var value string
		if next < 0 {
			value, decorators = decorators[1:], ""
		} else {
			value, decorators = decorators[1:next+1], decorators[next+1:]
		}
		value = strings.TrimSpace(value)

		switch marker {
		case '~':
			if cell.HasPatch {
				return cell, errors.Errorf("cell %q has two patches", field)
			}
			n, err := strconv.ParseUint(value, 10, 8)
			if err != nil || n > 127 {
				return cell, errors.Errorf("invalid patch %q in cell %q", value, field)
			}
			cell.Patch, cell.HasPatch = uint8(n), true
		case '@':
			if cell.HasVelocity {
				return cell, errors.Errorf("cell %q has two velocities", field)
			}
			n, err := strconv.ParseUint(value, 10, 8)
			if err != nil || n > 127 {
				return cell, errors.Errorf("invalid velocity %q in cell %q", value, field)
			}
			cell.Velocity, cell.HasVelocity = uint8(n), true
		case ':':
			if cell.ExplicitDuration {
				return cell, errors.Errorf("cell %q has two durations", field)
			}
			f, err := strconv.ParseFloat(value, 64)
			if err != nil || f <= 0 {
				return cell, errors.Errorf("invalid duration %q in cell %q", value, field)
			}
			cell.Duration, cell.ExplicitDuration = f, true
		}
	}
	return cell, nil
}

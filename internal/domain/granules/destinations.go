package granules

import (
	"fmt"
	"path"
	"regexp"
)

// ResolveDestinations computes the target location for every file, keyed by
// file name. Destinations are tried in order and the first whose regex
// matches the file name wins. A file that matches no destination fails the
// whole resolution; callers must treat that as a validation error and touch
// nothing.
func ResolveDestinations(files []File, destinations []Destination) (map[string]Location, error) {
	if len(destinations) == 0 {
		return nil, fmt.Errorf("%w: no destinations given", ErrInvalidArgument)
	}
	compiled := make([]*regexp.Regexp, len(destinations))
	for i, dest := range destinations {
		re, err := regexp.Compile(dest.Regex)
		if err != nil {
			return nil, fmt.Errorf("%w: destination regex %q: %v", ErrInvalidArgument, dest.Regex, err)
		}
		compiled[i] = re
	}

	targets := make(map[string]Location, len(files))
	for _, file := range files {
		matched := false
		for i, dest := range destinations {
			if !compiled[i].MatchString(file.FileName) {
				continue
			}
			targets[file.FileName] = Location{
				Bucket: dest.Bucket,
				Key:    path.Join(dest.Filepath, file.FileName),
			}
			matched = true
			break
		}
		if !matched {
			return nil, fmt.Errorf("%w: no applicable rule for file %q", ErrInvalidArgument, file.FileName)
		}
	}
	return targets, nil
}

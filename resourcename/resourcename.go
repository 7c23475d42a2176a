// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package resourcename

import (
	"fmt"
	"strings"
)

// Name is a parsed fully-qualified resource name.
//
// Canonical form:
//
//	projects/{project}/locations/{location}/{collection}/{id}
//
// Metadata-store resources carry an extra segment:
//
//	projects/{project}/locations/{location}/metadataStores/{store}/{collection}/{id}
//
// Name is an immutable value; formatting then parsing yields the original
// fields.
type Name struct {
	Project       string
	Location      string
	MetadataStore string
	Collection    string
	ID            string
}

// Full builds a location-scoped resource name.
func Full(project, location, collection, id string) Name {
	return Name{Project: project, Location: location, Collection: collection, ID: id}
}

// Metadata builds a metadata-store-scoped resource name.
func Metadata(project, location, store, collection, id string) Name {
	return Name{Project: project, Location: location, MetadataStore: store, Collection: collection, ID: id}
}

// LocationPath formats the parent path of all location-scoped collections.
func LocationPath(project, location string) string {
	return "projects/" + project + "/locations/" + location
}

// MetadataStorePath formats the parent path of metadata-store-scoped
// collections.
func MetadataStorePath(project, location, store string) string {
	return LocationPath(project, location) + "/metadataStores/" + store
}

// String formats the canonical resource name.
func (n Name) String() string {
	if n.MetadataStore != "" {
		return MetadataStorePath(n.Project, n.Location, n.MetadataStore) + "/" + n.Collection + "/" + n.ID
	}
	return LocationPath(n.Project, n.Location) + "/" + n.Collection + "/" + n.ID
}

// Parent formats the collection path the resource lives in, i.e. the
// canonical name without the trailing "/{id}".
func (n Name) Parent() string {
	s := n.String()
	return s[:len(s)-len(n.ID)-1]
}

// Validate reports whether all fields of the name are populated.
func (n Name) Validate() error {
	for _, f := range []struct{ name, value string }{
		{"project", n.Project},
		{"location", n.Location},
		{"collection", n.Collection},
		{"id", n.ID},
	} {
		if f.value == "" {
			return fmt.Errorf("resource name is missing the %s segment", f.name)
		}
	}
	return nil
}

// Parse parses a canonical resource name string.
//
// Both the location-scoped and the metadata-store-scoped forms are accepted.
func Parse(s string) (Name, error) {
	segs := strings.Split(s, "/")
	for _, seg := range segs {
		if seg == "" {
			return Name{}, fmt.Errorf("invalid resource name %q: empty segment", s)
		}
	}

	var n Name
	switch {
	case len(segs) == 6 && segs[0] == "projects" && segs[2] == "locations":
		n = Full(segs[1], segs[3], segs[4], segs[5])
	case len(segs) == 8 && segs[0] == "projects" && segs[2] == "locations" && segs[4] == "metadataStores":
		n = Metadata(segs[1], segs[3], segs[5], segs[6], segs[7])
	default:
		return Name{}, fmt.Errorf("invalid resource name %q: want projects/{project}/locations/{location}[/metadataStores/{store}]/{collection}/{id}", s)
	}
	if err := n.Validate(); err != nil {
		return Name{}, fmt.Errorf("invalid resource name %q: %w", s, err)
	}
	return n, nil
}

// IsFull reports whether s looks like a fully-qualified resource name rather
// than a bare resource ID.
func IsFull(s string) bool {
	return strings.HasPrefix(s, "projects/")
}

// Package registry holds the static mapping from adapter id to its
// declared type.
//
// The resilient client only needs two questions answered: is this id
// known, and what type of adapter is it. Registry answers both and can be
// loaded from a YAML or TOML manifest:
//
//	adapters:
//	  - id: pdf-extractor
//	    name: PDF Extractor
//	    type: extraction
//
// Registries are safe for concurrent use.
package registry

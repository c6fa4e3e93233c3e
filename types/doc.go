// Package types provides core types shared across the flowcanvas session
// core. This package has ZERO dependencies on other flowcanvas packages to
// avoid circular imports. All other packages should import types from here.
package types

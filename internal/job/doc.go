// Package job defines the render job record consumed by the path resolver and
// the render controller.
//
// A Record is one row of render work: the source blend file, the camera,
// scene and view layers to render, an optional frame range, and per-job
// quality settings. Records are loaded from and saved to a TOML job file.
// Key derives a stable identity used to group outcomes and detect duplicates.
package job

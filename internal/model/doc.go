// Package model provides the data types shared by every style-mirror package.
//
// This package contains type definitions and their document encoding only.
// All other internal packages import model; model imports nothing internal.
//
// Key design constraints:
//   - PlacedItem holds a non-owning catalog reference (Ref), never a copy
//   - PlacedRecord is the only frozen copy of catalog data and is created at commit
//   - Slice order of Scene.Items is z-order and is never rearranged
//   - JSON field names match the documents already written by the mobile app
//     (id, imageUri, category, createdAt, position, items, type, preview)
package model

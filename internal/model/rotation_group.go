package model

// RotationGroup is a named, reusable set of content with its own rotation
// policy.  Request parameters override the stored policy when present.
type RotationGroup struct {
	ID             uint64 // rotation_groups.id
	UserID         uint64 // rotation_groups.user_id
	Name           string // rotation_groups.name
	RotationType   string // rotation_groups.rotation_type
	IncludeReruns  bool   // rotation_groups.include_reruns
	RerunFrequency string // rotation_groups.rerun_frequency
	Items          []RotationGroupItem
}

// RotationGroupItem is one member of a rotation group in group order.
type RotationGroupItem struct {
	GroupID   uint64 // rotation_group_items.group_id
	ContentID uint64 // rotation_group_items.content_id
	Position  int    // rotation_group_items.position
	Weight    int    // rotation_group_items.weight (default 1)
}

package entities

// PermissionSet is the per-user command allow-list of a guild.
type PermissionSet struct {
	Users map[string][]string `json:"users" bson:"users"`
}

// PermissionDocument is the persisted document holding every guild's permissions.
type PermissionDocument struct {
	Servers map[string]*PermissionSet `json:"servers" bson:"servers"`
}

// Init implements the dataaccess initializer.
func (d *PermissionDocument) Init() {
	if d.Servers == nil {
		d.Servers = make(map[string]*PermissionSet)
	}
	for id, s := range d.Servers {
		if s == nil {
			d.Servers[id] = &PermissionSet{Users: make(map[string][]string)}
			continue
		}
		if s.Users == nil {
			s.Users = make(map[string][]string)
		}
	}
}

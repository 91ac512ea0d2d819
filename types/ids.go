package types

// PluginID identifies a plugin, e.g. "com.pulsar.alias-editor".
type PluginID string

// EditorID identifies an editor offered by a plugin.
type EditorID string

// FileTypeID identifies a file type declared by a plugin.
type FileTypeID string

func (id PluginID) String() string   { return string(id) }
func (id EditorID) String() string   { return string(id) }
func (id FileTypeID) String() string { return string(id) }

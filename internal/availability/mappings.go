package availability

var mmtMapping = Mapping{
	Name:   "mmt",
	Prefix: "MMT-",
	Buckets: []Bucket{
		{Name: "Standard", Categories: []string{"Standard non view", "Standard semi view"}},
		{Name: "Deluxe - Valley View", Categories: []string{"Deluxe with Mountain view"}},
		{Name: "Deluxe Rooms", Categories: []string{"Deluxe non view"}},
		{Name: "Deluxe - Twin Bed", Categories: []string{"Deluxe twin bedded with Mountain view"}},
		{Name: "Executive Room", Categories: []string{"Executive with front view"}},
		{Name: "Super Deluxe -Valley View", Categories: []string{
			"Super Deluxe with Mountain view",
			"Super Deluxe twin bedded with Mountain view",
		}},
		{Name: "Family Room", Categories: []string{"Family room with Mountain view"}},
		{Name: "Executive - Valley View", Categories: []string{"Executive with Mountain view"}},
	},
}

var agodaMapping = Mapping{
	Name:   "agoda",
	Prefix: "Agoda-",
	Buckets: []Bucket{
		{Name: "Standard", Categories: []string{"Standard non view", "Standard semi view"}},
		{Name: "Deluxe", Categories: []string{"Deluxe non view"}},
		{Name: "Deluxe Mountain View", Categories: []string{
			"Deluxe with Mountain view",
			"Deluxe twin bedded with Mountain view",
		}},
		{Name: "Super Deluxe -Valley View", Categories: []string{"Super Deluxe with Mountain view"}},
		{Name: "Executive", Categories: []string{"Executive with front view"}},
		{Name: "Executive Mountain View King Room", Categories: []string{"Executive with Mountain view"}},
		{Name: "Family Room", Categories: []string{"Family room with Mountain view"}},
	},
}

// MMTMapping returns the MakeMyTrip bucket mapping.
func MMTMapping() Mapping { return mmtMapping.Clone() }

// AgodaMapping returns the Agoda bucket mapping.
func AgodaMapping() Mapping { return agodaMapping.Clone() }

// BuiltinMappings returns the built-in channel mappings in output order.
func BuiltinMappings() []Mapping {
	return []Mapping{MMTMapping(), AgodaMapping()}
}

// MergeMappings overlays configured mappings on the built-in ones by name.
// Unknown names are appended after the built-ins.
func MergeMappings(builtin, configured []Mapping) []Mapping {
	out := make([]Mapping, 0, len(builtin)+len(configured))
	pos := make(map[string]int, len(builtin))
	for _, m := range builtin {
		pos[m.Name] = len(out)
		out = append(out, m.Clone())
	}
	for _, m := range configured {
		if i, ok := pos[m.Name]; ok {
			out[i] = m.Clone()
			continue
		}
		pos[m.Name] = len(out)
		out = append(out, m.Clone())
	}
	return out
}

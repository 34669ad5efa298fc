package homepage

// Homepage (gethomepage.dev) keeps one YAML file per dashboard section. Both
// files share the outer shape, a list of single-key maps from a group name to
// a list of single-key maps from an item name to its properties.

// BookmarksConfig is the root of bookmarks.yaml.
//
//	- Developer:
//	    - Github:
//	        - abbr: GH
//	          href: https://github.com/
type BookmarksConfig []map[string][]map[string][]BookmarkEntry

// BookmarkEntry holds the properties of one bookmark. Homepage wraps them in a
// single element list.
type BookmarkEntry struct {
	Icon        string `yaml:"icon,omitempty"`
	Abbr        string `yaml:"abbr,omitempty"`
	Href        string `yaml:"href"`
	Description string `yaml:"description,omitempty"`
}

// ServicesConfig is the root of services.yaml.
//
//	- Infrastructure:
//	    - AdGuard Home:
//	        href: https://adguard.domain.ext
type ServicesConfig []map[string][]map[string]ServiceProps

// ServiceProps holds the properties of one service. Only the link related
// fields are read; widgets and monitors are ignored.
type ServiceProps struct {
	Href        string `yaml:"href"`
	Icon        string `yaml:"icon,omitempty"`
	Description string `yaml:"description,omitempty"`
}

package entities

// JSONFormat is a named string format. Checked formats carry a regular
// expression taken from ajv-formats; the others are declared but unchecked.
type JSONFormat string

const (
	FormatDate                   JSONFormat = "date"
	FormatTime                   JSONFormat = "time"
	FormatDateTime               JSONFormat = "date-time"
	FormatISOTime                JSONFormat = "iso-time"
	FormatISODateTime            JSONFormat = "iso-date-time"
	FormatDuration               JSONFormat = "duration"
	FormatURI                    JSONFormat = "uri"
	FormatURIReference           JSONFormat = "uri-reference"
	FormatURITemplate            JSONFormat = "uri-template"
	FormatURL                    JSONFormat = "url"
	FormatEmail                  JSONFormat = "email"
	FormatHostname               JSONFormat = "hostname"
	FormatIPv4                   JSONFormat = "ipv4"
	FormatIPv6                   JSONFormat = "ipv6"
	FormatUUID                   JSONFormat = "uuid"
	FormatJSONPointer            JSONFormat = "json-pointer"
	FormatJSONPointerURIFragment JSONFormat = "json-pointer-uri-fragment"
	FormatRelativeJSONPointer    JSONFormat = "relative-json-pointer"
	FormatByte                   JSONFormat = "byte"
	FormatNumber                 JSONFormat = "number"
	FormatPassword               JSONFormat = "password"
	FormatBinary                 JSONFormat = "binary"
)

const ipv4Octet = `(?:25[0-5]|2[0-4]\d|1\d\d|[1-9]?\d)`

// Regexes use the .NET/ECMA-262 dialect (look-around allowed).
var formatRegexes = map[JSONFormat]string{
	FormatDate:        `(?i)^\d\d\d\d-[0-1]\d-[0-3]\d$`,
	FormatTime:        `(?i)^(?:[0-2]\d:[0-5]\d:[0-5]\d|23:59:60)(?:\.\d+)?(?:z|[+-]\d\d(?::?\d\d)?)$`,
	FormatDateTime:    `(?i)^\d\d\d\d-[0-1]\d-[0-3]\dt(?:[0-2]\d:[0-5]\d:[0-5]\d|23:59:60)(?:\.\d+)?(?:z|[+-]\d\d(?::?\d\d)?)$`,
	FormatISOTime:     `(?i)^(?:[0-2]\d:[0-5]\d:[0-5]\d|23:59:60)(?:\.\d+)?(?:z|[+-]\d\d(?::?\d\d)?)?$`,
	FormatISODateTime: `(?i)^\d\d\d\d-[0-1]\d-[0-3]\d[t\s](?:[0-2]\d:[0-5]\d:[0-5]\d|23:59:60)(?:\.\d+)?(?:z|[+-]\d\d(?::?\d\d)?)?$`,
	FormatDuration:    `^P(?!$)((\d+Y)?(\d+M)?(\d+D)?(T(?=\d)(\d+H)?(\d+M)?(\d+S)?)?|(\d+W)?)$`,
	FormatEmail:       "(?i)^[a-z0-9!#$%&'*+/=?^_`{|}~-]+(?:\\.[a-z0-9!#$%&'*+/=?^_`{|}~-]+)*@(?:[a-z0-9](?:[a-z0-9-]*[a-z0-9])?\\.)+[a-z0-9](?:[a-z0-9-]*[a-z0-9])?$",
	FormatIPv4:        `^(?:` + ipv4Octet + `\.){3}` + ipv4Octet + `$`,
	FormatIPv6: `(?i)^((([0-9a-f]{1,4}:){7}([0-9a-f]{1,4}|:))|(([0-9a-f]{1,4}:){6}(:[0-9a-f]{1,4}|((25[0-5]|2[0-4]\d|1\d\d|[1-9]?\d)(\.(25[0-5]|2[0-4]\d|1\d\d|[1-9]?\d)){3})|:))|` +
		`(([0-9a-f]{1,4}:){5}(((:[0-9a-f]{1,4}){1,2})|:((25[0-5]|2[0-4]\d|1\d\d|[1-9]?\d)(\.(25[0-5]|2[0-4]\d|1\d\d|[1-9]?\d)){3})|:))|` +
		`(([0-9a-f]{1,4}:){4}(((:[0-9a-f]{1,4}){1,3})|((:[0-9a-f]{1,4})?:((25[0-5]|2[0-4]\d|1\d\d|[1-9]?\d)(\.(25[0-5]|2[0-4]\d|1\d\d|[1-9]?\d)){3}))|:))|` +
		`(([0-9a-f]{1,4}:){3}(((:[0-9a-f]{1,4}){1,4})|((:[0-9a-f]{1,4}){0,2}:((25[0-5]|2[0-4]\d|1\d\d|[1-9]?\d)(\.(25[0-5]|2[0-4]\d|1\d\d|[1-9]?\d)){3}))|:))|` +
		`(([0-9a-f]{1,4}:){2}(((:[0-9a-f]{1,4}){1,5})|((:[0-9a-f]{1,4}){0,3}:((25[0-5]|2[0-4]\d|1\d\d|[1-9]?\d)(\.(25[0-5]|2[0-4]\d|1\d\d|[1-9]?\d)){3}))|:))|` +
		`(([0-9a-f]{1,4}:){1}(((:[0-9a-f]{1,4}){1,6})|((:[0-9a-f]{1,4}){0,4}:((25[0-5]|2[0-4]\d|1\d\d|[1-9]?\d)(\.(25[0-5]|2[0-4]\d|1\d\d|[1-9]?\d)){3}))|:))|` +
		`(:(((:[0-9a-f]{1,4}){1,7})|((:[0-9a-f]{1,4}){0,5}:((25[0-5]|2[0-4]\d|1\d\d|[1-9]?\d)(\.(25[0-5]|2[0-4]\d|1\d\d|[1-9]?\d)){3}))|:)))$`,
	FormatUUID:                   `(?i)^(?:urn:uuid:)?[0-9a-f]{8}-(?:[0-9a-f]{4}-){3}[0-9a-f]{12}$`,
	FormatJSONPointer:            `^(?:\/(?:[^~/]|~0|~1)*)*$`,
	FormatJSONPointerURIFragment: `(?i)^#(?:\/(?:[a-z0-9_\-.!$&'()*+,;:=@]|%[0-9a-f]{2}|~0|~1)*)*$`,
	FormatRelativeJSONPointer:    `^(?:0|[1-9][0-9]*)(?:#|(?:\/(?:[^~/]|~0|~1)*)*)$`,
}

var formatCatalog = []JSONFormat{
	FormatDate, FormatTime, FormatDateTime, FormatISOTime, FormatISODateTime,
	FormatDuration, FormatURI, FormatURIReference, FormatURITemplate, FormatURL,
	FormatEmail, FormatHostname, FormatIPv4, FormatIPv6, FormatUUID,
	FormatJSONPointer, FormatJSONPointerURIFragment, FormatRelativeJSONPointer,
	FormatByte, FormatNumber, FormatPassword, FormatBinary,
}

// Formats returns every format of the catalog in declaration order.
func Formats() []JSONFormat {
	out := make([]JSONFormat, len(formatCatalog))
	copy(out, formatCatalog)
	return out
}

// ParseFormat looks a format up by its JSON Schema name.
func ParseFormat(name string) (JSONFormat, bool) {
	for _, f := range formatCatalog {
		if string(f) == name {
			return f, true
		}
	}
	return "", false
}

// Regex returns the validation regex of the format. The second result is false
// for formats that are declared but unchecked.
func (f JSONFormat) Regex() (string, bool) {
	re, ok := formatRegexes[f]
	return re, ok && re != ""
}

package schema

import (
	"strings"
	"unicode"

	"db2graph/internal/metadata"
)

var abbreviations = map[string]string{
	"nm": "name", "dt": "date", "no": "number", "cd": "code",
	"desc": "description", "amt": "amount", "qty": "quantity",
	"addr": "address", "tel": "phone", "ph": "phone",
	"biz": "business", "img": "image", "msg": "message", "doc": "document",
	"usr": "user", "emp": "employee", "mgr": "manager", "dept": "department",
	"grp": "group", "cat": "category", "loc": "location",
	"cust": "customer", "prod": "product", "ord": "order", "inv": "invoice",
	"acct": "account", "org": "organization", "par": "parent", "ref": "reference",
	"stat": "status", "typ": "type",
}

// keySuffixes are the trailing words that mark a column as a key rather than a concept.
var keySuffixes = map[string]bool{"id": true, "fk": true, "key": true, "ref": true}

// NodeLabel is the label given to nodes exported from table.
func NodeLabel(table metadata.TableName) string {
	return table.Simple()
}

// RelationshipType names the relationship of a direct join after its foreign key column:
// "addressId" -> "ADDRESS", "home_addr_id" -> "HOME_ADDRESS". Columns that carry no
// meaning of their own ("id", "fk") fall back to the referenced table name.
func RelationshipType(join metadata.Join) string {
	words := splitWords(join.Source.SimpleName())
	for len(words) > 0 && keySuffixes[words[len(words)-1]] {
		words = words[:len(words)-1]
	}
	if len(words) == 0 {
		words = splitWords(join.Target.Table.Simple())
	}
	return upperSnake(expand(words))
}

// BridgeRelationshipType names the relationship materialized by a bridge table.
func BridgeRelationshipType(jt *metadata.JoinTable) string {
	return upperSnake(expand(splitWords(jt.Name().Simple())))
}

func expand(words []string) []string {
	decoded := make([]string, len(words))
	for i, w := range words {
		if full, ok := abbreviations[w]; ok {
			decoded[i] = full
		} else {
			decoded[i] = w
		}
	}
	return decoded
}

func upperSnake(words []string) string {
	return strings.ToUpper(strings.Join(words, "_"))
}

// splitWords breaks an identifier on separators and camel case boundaries and lower-cases
// the parts: "personID" -> [person id], "Student_Course" -> [student course].
func splitWords(s string) []string {
	var words []string
	var current []rune
	flush := func() {
		if len(current) > 0 {
			words = append(words, strings.ToLower(string(current)))
			current = current[:0]
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		if r == '_' || r == '-' || r == ' ' || r == '.' {
			flush()
			continue
		}
		if unicode.IsUpper(r) && i > 0 {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				flush()
			}
		}
		current = append(current, r)
	}
	flush()
	return words
}

package authz

import "strings"

// CountryPrefix is the dialing code local numbers are expanded with.
const CountryPrefix = "966"

// NormalizePhone strips every non-digit character.
func NormalizePhone(phone string) string {
	var b strings.Builder
	b.Grow(len(phone))
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// singleLeadingZero reports a local number: exactly one leading 0 (00.. is an international prefix).
func singleLeadingZero(n string) bool {
	return len(n) > 1 && n[0] == '0' && n[1] != '0'
}

// PhoneVariants returns the spellings a caller's number may be stored under:
// the number itself, 05.. -> 5.. and 9665.., 9665.. -> 05..
func PhoneVariants(phone string) []string {
	n := NormalizePhone(phone)
	if n == "" {
		return nil
	}
	out := []string{n}
	if singleLeadingZero(n) {
		out = append(out, n[1:], CountryPrefix+n[1:])
	}
	if strings.HasPrefix(n, CountryPrefix) {
		out = append(out, "0"+n[len(CountryPrefix):])
	}
	return out
}

// PhoneMatches reports whether either number is a variant of the other.
// This is the only ownership check the portal has; records carry no user id.
func PhoneMatches(callerPhone, recordPhone string) bool {
	caller, rec := NormalizePhone(callerPhone), NormalizePhone(recordPhone)
	if caller == "" || rec == "" {
		return false
	}
	return contains(PhoneVariants(caller), rec) || contains(PhoneVariants(rec), caller)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// MatchCandidates lists every stored spelling PhoneMatches accepts for phone.
// Storage queries filter on it; callers still confirm with PhoneMatches.
func MatchCandidates(phone string) []string {
	n := NormalizePhone(phone)
	if n == "" {
		return nil
	}
	out := PhoneVariants(n)
	add := func(v string) {
		if !contains(out, v) {
			out = append(out, v)
		}
	}
	if n[0] != '0' {
		add("0" + n) // хранится как 05..
	} else {
		add(CountryPrefix + n[1:]) // хранится как 966.., сводится к 0..
	}
	return out
}

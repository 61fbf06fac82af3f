package normalize

// homoglyphs maps lowercase characters from other scripts that render like
// Latin letters. Lookups happen before and after case folding, so only
// lowercase forms and caseless letters are listed.
var homoglyphs = map[rune]rune{
	// Cyrillic
	'а': 'a', 'в': 'b', 'г': 'r', 'е': 'e', 'һ': 'h', 'н': 'h', 'і': 'i',
	'ј': 'j', 'к': 'k', 'ӏ': 'l', 'м': 'm', 'п': 'n', 'о': 'o', 'р': 'p',
	'ԛ': 'q', 'ѕ': 's', 'с': 'c', 'т': 't', 'у': 'y', 'ԝ': 'w', 'х': 'x',
	'ԁ': 'd', 'ь': 'b', 'ѵ': 'v', 'ү': 'y', 'ɡ': 'g',

	// Greek
	'α': 'a', 'β': 'b', 'γ': 'y', 'ε': 'e', 'η': 'n', 'ι': 'i', 'κ': 'k',
	'ν': 'v', 'ο': 'o', 'ρ': 'p', 'τ': 't', 'υ': 'u', 'χ': 'x', 'ω': 'w',
	'ϲ': 'c', 'ϳ': 'j',

	// Armenian
	'ա': 'a', 'հ': 'h', 'ո': 'n', 'օ': 'o', 'ս': 'u', 'ց': 'g', 'զ': 'q',

	// Latin small capitals and IPA letters with no case mapping
	'ᴀ': 'a', 'ʙ': 'b', 'ᴄ': 'c', 'ᴅ': 'd', 'ᴇ': 'e', 'ꜰ': 'f', 'ɢ': 'g',
	'ʜ': 'h', 'ɪ': 'i', 'ᴊ': 'j', 'ᴋ': 'k', 'ʟ': 'l', 'ᴍ': 'm', 'ɴ': 'n',
	'ᴏ': 'o', 'ᴘ': 'p', 'ʀ': 'r', 'ꜱ': 's', 'ᴛ': 't', 'ᴜ': 'u', 'ᴠ': 'v',
	'ᴡ': 'w', 'ʏ': 'y', 'ᴢ': 'z', 'ı': 'i', 'ȷ': 'j',
}

// Letter-like symbol blocks that NFKD does not decompose.
const (
	negativeSquaredA   = 0x1F170 // 🅰
	negativeSquaredZ   = 0x1F189
	negativeCircledA   = 0x1F150 // 🅐
	negativeCircledZ   = 0x1F169
	regionalIndicatorA = 0x1F1E6 // 🇦
	regionalIndicatorZ = 0x1F1FF
)

func foldHomoglyph(r rune) rune {
	if r < 0x80 {
		return r
	}
	if m, ok := homoglyphs[r]; ok {
		return m
	}
	switch {
	case r >= negativeSquaredA && r <= negativeSquaredZ:
		return 'a' + (r - negativeSquaredA)
	case r >= negativeCircledA && r <= negativeCircledZ:
		return 'a' + (r - negativeCircledA)
	case r >= regionalIndicatorA && r <= regionalIndicatorZ:
		return 'a' + (r - regionalIndicatorA)
	}
	return r
}

func foldLeet(r rune) rune {
	switch r {
	case '3':
		return 'e'
	case '1', '!', '|':
		return 'i'
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	case '7', '+':
		return 't'
	case '2':
		return 'z'
	case '@', '4':
		return 'a'
	case '8':
		return 'b'
	case '9', '6':
		return 'g'
	}
	return r
}

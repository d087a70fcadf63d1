// Package randutil implements random utilities.
package randutil

import "math/rand"

const ll = "0123456789abcdefghijklmnopqrstuvwxyz"

func String(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = ll[rand.Intn(len(ll))]
	}
	pfx := randoms[rand.Intn(len(randoms))]
	s := pfx + string(b)
	if len(s) > n {
		s = s[:n]
	}
	return s
}

var randoms = []string{
	"autumn", "sun", "dream", "cherry", "tree", "frost", "morning", "sparkling",
	"wandering", "snowy", "butterfly", "green", "river", "breeze", "proud",
	"floral", "ancient", "delight", "lively", "waterfall", "embark", "flower",
	"atlas", "grass", "haze", "glacial", "mountain", "snowflake", "misty",
	"summer", "icy", "spring", "winter", "twilight", "dawn", "blue", "coral",
	"bird", "galaxy", "hello", "wind", "sea", "ocean", "sunrise", "tropical",
	"snow", "lake", "sunset", "pine", "leaf", "forest", "cloud", "sound",
	"sky", "surf", "water", "wildflower", "wave", "amber", "falling", "star",
	"otter", "alpine", "lucerne", "matterhorn", "geneva", "ticino", "jura",
}

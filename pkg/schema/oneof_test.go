// Copyright 2026, Pulumi Corporation.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pets() (*OneOfSchema, Dictionary) {
	cat := Object([]string{"type", "meows"},
		Prop("type", String()),
		Prop("meows", Boolean())).WithAdditionalProperties(Any())
	dog := Object([]string{"type", "barks"},
		Prop("type", String()),
		Prop("barks", Boolean())).WithAdditionalProperties(Any())
	dict := Dictionary{"Cat": cat, "Dog": dog}
	return OneOf(Ref("Cat"), Ref("Dog")), dict
}

func TestOneOfBruteForce(t *testing.T) {
	t.Parallel()

	s := OneOf(String(), Number())

	out, err := Validate("x", s, nil)
	require.NoError(t, err)
	assert.Equal(t, "x", out)

	out, err = Validate(2.5, s, nil)
	require.NoError(t, err)
	assert.Equal(t, 2.5, out)

	_, err = Validate(true, s, nil)
	perr := requireParseError(t, err)
	assert.Equal(t, NoMatchingAlternative, perr.Kind)
	assert.Equal(t, "No matching oneOf schemas (string, number)", perr.Message)
}

func TestOneOfAmbiguous(t *testing.T) {
	t.Parallel()

	s := OneOf(String(), Any(), JSON())
	_, err := Validate("x", s, nil)
	perr := requireParseError(t, err)
	assert.Equal(t, AmbiguousAlternatives, perr.Kind)
	assert.Equal(t, "Ambiguous oneOf: matched 3 schemas", perr.Message)
}

func TestOneOfLabels(t *testing.T) {
	t.Parallel()

	s := OneOf(Ref("Cat"), Array(String()), JSON())
	_, err := Validate(make(chan int), s, Dictionary{"Cat": Object(nil)})
	perr := requireParseError(t, err)
	assert.Equal(t, "No matching oneOf schemas (ref(Cat), array, ref(pulumi.json#/Json))", perr.Message)
}

func TestOneOfDiscriminatorMapping(t *testing.T) {
	t.Parallel()

	s, dict := pets()
	s.WithDiscriminator("type", map[string]string{"cat": "Cat", "dog": "Dog"})

	// Both alternatives accept this value, so a brute-force search would be ambiguous. The mapping selects Cat
	// without evaluating Dog.
	value := map[string]any{"type": "cat", "meows": true, "barks": false}
	out, err := Validate(value, s, dict)
	require.NoError(t, err)
	assert.Equal(t, value, out)

	_, err = Validate(value, OneOf(Ref("Cat"), Ref("Dog")), dict)
	perr := requireParseError(t, err)
	assert.Equal(t, AmbiguousAlternatives, perr.Kind)

	// The mapped alternative still has to match.
	_, err = Validate(map[string]any{"type": "dog", "meows": true}, s, dict)
	perr = requireParseError(t, err)
	assert.Equal(t, MissingProperty, perr.Kind)
	assert.Contains(t, perr.Message, `"barks"`)
}

func TestOneOfDiscriminatorFailures(t *testing.T) {
	t.Parallel()

	s, dict := pets()
	s.WithDiscriminator("type", map[string]string{"cat": "Cat", "dog": "Dog", "fish": "Fish"})

	cases := []struct {
		name    string
		value   any
		kind    ErrorKind
		message string
	}{
		{"not an object", "cat", DiscriminatorShape, `Expected object for discriminator "type" in oneOf`},
		{"missing", map[string]any{"meows": true}, DiscriminatorShape, `Missing discriminator "type" in oneOf`},
		{"not a string", map[string]any{"type": 1}, DiscriminatorShape,
			`Expected discriminator "type" to be string in oneOf`},
		{"unknown", map[string]any{"type": "bird"}, DiscriminatorUnknown, `Unknown discriminator "bird" for oneOf`},
		{"no target", map[string]any{"type": "fish"}, DiscriminatorTarget,
			`Discriminator mapping "Fish" not found in oneOf`},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			_, err := Validate(c.value, s, dict)
			perr := requireParseError(t, err)
			assert.Equal(t, c.kind, perr.Kind)
			assert.Equal(t, c.message, perr.Message)
		})
	}
}

func TestOneOfDiscriminatorWithoutMapping(t *testing.T) {
	t.Parallel()

	s, dict := pets()
	s.WithDiscriminator("type", nil)

	// The shape of the discriminator is checked first.
	_, err := Validate(map[string]any{"meows": true}, s, dict)
	perr := requireParseError(t, err)
	assert.Equal(t, `Missing discriminator "type" in oneOf`, perr.Message)

	// Then every alternative is tried.
	out, err := Validate(map[string]any{"type": "dog", "barks": true}, s, dict)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"type": "dog", "barks": true}, out)

	_, err = Validate(map[string]any{"type": 3}, s, dict)
	perr = requireParseError(t, err)
	assert.Equal(t, NoMatchingAlternative, perr.Kind)
}

func TestOneOfNested(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		OneOf(String(), OneOf(Number(), Boolean()))
	})
}

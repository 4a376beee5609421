package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func TestKindFromPID(t *testing.T) {
	tests := []struct {
		pid    string
		want   Kind
		wantOK bool
	}{
		{"UIDB-2024-0001", UnidentifiedBody, true},
		{"MP-2024-0042", MissingPerson, true},
		{"PUIDB-1", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := KindFromPID(tt.pid)
		assert.Equal(t, tt.want, got, tt.pid)
		assert.Equal(t, tt.wantOK, ok, tt.pid)
	}
}

func TestDescribe_FullRecord(t *testing.T) {
	d := Descriptor{
		Gender:    "Male",
		Age:       intPtr(67),
		HeightCM:  intPtr(170),
		Build:     "Slim",
		HairColor: "White",
		EyeColor:  "Brown",
		Marks:     "Scar on left cheek",
		Clothing:  "Blue kurta",
		Location:  "Andheri station",
		FreeText:  "Suffers from memory loss",
	}

	got := Describe(d)

	want := "Male. 67 years old. 170cm tall. Slim build. White hair. Brown eyes. " +
		"Marks: Scar on left cheek. Clothing: Blue kurta. Location: Andheri station. Suffers from memory loss."
	assert.Equal(t, want, got)
}

func TestDescribe_SkipsBlank(t *testing.T) {
	assert.Equal(t, "Female. 30 years old.", Describe(Descriptor{Gender: "Female", Age: intPtr(30), Build: "  "}))
	assert.Empty(t, Describe(Descriptor{}))
}

func TestRecord_Attributes(t *testing.T) {
	r := Record{PID: "MP-1", Age: intPtr(40), Gender: "Male", HeightCM: intPtr(170), HairColor: "Black"}
	a := r.Attributes()
	assert.Equal(t, 40, *a.Age)
	assert.Equal(t, "Male", a.Gender)
	assert.Equal(t, "Black", a.HairColor)
	assert.Empty(t, a.EyeColor)
}

func TestDescriptor_AttributesMatchRecord(t *testing.T) {
	r := Record{Age: intPtr(40), Gender: "Male", HeightCM: intPtr(170), HairColor: "Black", EyeColor: "Brown"}
	assert.Equal(t, r.Attributes(), r.Descriptor().Attributes())
}

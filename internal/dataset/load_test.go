package dataset

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShruAgarwal/Zoogist-Insights/internal/apperr"
)

const header = "recordedBy,username,timestamp,date,time,decimalLatitude,decimalLongitude,place,habitat,speciesName,count,countType,obsType,scientificName,instanceID,conservationStatus"

func TestReadFileSample(t *testing.T) {
	store, err := ReadFile("testdata/mammals.csv")
	require.NoError(t, err)
	require.Equal(t, 8, store.Len())

	v, ok := store.Value(0, ColSpeciesName)
	require.True(t, ok)
	assert.Equal(t, "Lion-tailed Macaque", v)

	v, _ = store.Value(5, ColCount)
	assert.Equal(t, int64(25), v)

	v, _ = store.Value(5, ColLatitude)
	assert.InDelta(t, 10.2916, v.(float64), 1e-9)

	_, ok = store.Value(0, "speciesname")
	assert.False(t, ok, "column lookup is case-sensitive")
	_, ok = store.Value(99, ColCount)
	assert.False(t, ok)

	assert.Equal(t, []string{"Deciduous", "Evergreen", "Grassland"}, store.Distinct(ColHabitat))
}

func TestReadMissingColumn(t *testing.T) {
	in := strings.Replace(header, "speciesName", "SpeciesName", 1) + "\n"
	_, err := Read(strings.NewReader(in))
	require.Error(t, err)
	assert.Equal(t, apperr.DatasetLoad, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "speciesName")
}

func TestReadRejectsBadRows(t *testing.T) {
	row := func(count, id string) string {
		return "a,b,ts,01-01-2020,06:00,10.1,77.2,P,H,Tiger," + count + ",Total,Direct,Panthera tigris," + id + ",Endangered"
	}
	cases := map[string]string{
		"duplicate id":   header + "\n" + row("1", "X1") + "\n" + row("2", "X1") + "\n",
		"negative count": header + "\n" + row("-3", "X1") + "\n",
		"text count":     header + "\n" + row("many", "X1") + "\n",
		"fraction count": header + "\n" + row("2.5", "X1") + "\n",
		"missing id":     header + "\n" + row("1", "") + "\n",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Read(strings.NewReader(in))
			require.Error(t, err)
			assert.Equal(t, apperr.DatasetLoad, apperr.KindOf(err))
		})
	}
}

func TestReadToleratesBlankNumbersAndBOM(t *testing.T) {
	in := "\ufeff" + header + "\n" +
		"a,b,ts,01-01-2020,06:00,,,P,H,Tiger,3.0,Total,Direct,Panthera tigris,X1,Endangered\n\n"
	store, err := Read(strings.NewReader(in))
	require.NoError(t, err)
	require.Equal(t, 1, store.Len())

	v, _ := store.Value(0, ColLatitude)
	assert.Nil(t, v)
	v, _ = store.Value(0, ColCount)
	assert.Equal(t, int64(3), v)
}

func TestReadBlankTextCellsAreMissing(t *testing.T) {
	in := header + "\n" +
		"a,b,ts,01-01-2020,06:00,10.1,77.2,,Evergreen,Tiger,1,Total,Direct,Panthera tigris,X1,\n" +
		"a,b,ts,02-01-2020,06:00,10.1,77.2,Topslip,,Gaur,2,Total,Direct,Bos gaurus,X2,Vulnerable\n"
	store, err := Read(strings.NewReader(in))
	require.NoError(t, err)

	v, ok := store.Value(0, ColPlace)
	require.True(t, ok)
	assert.Nil(t, v)
	v, _ = store.Value(0, ColConservationStatus)
	assert.Nil(t, v)
	assert.Equal(t, "", store.Records()[0].Place)

	assert.Equal(t, []string{"Evergreen"}, store.Distinct(ColHabitat))
	assert.Equal(t, []string{"Topslip"}, store.Distinct(ColPlace))
}

func TestReadEmpty(t *testing.T) {
	_, err := Read(strings.NewReader(""))
	assert.Equal(t, apperr.DatasetLoad, apperr.KindOf(err))
}

type fakeGetter struct {
	body   string
	err    error
	bucket string
	key    string
}

func (f *fakeGetter) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.bucket, f.key = aws.ToString(in.Bucket), aws.ToString(in.Key)
	if f.err != nil {
		return nil, f.err
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(f.body))}, nil
}

func TestReadS3(t *testing.T) {
	g := &fakeGetter{body: header + "\na,b,ts,01-01-2020,06:00,10,77,P,H,Tiger,1,Total,Direct,Panthera tigris,X1,Endangered\n"}
	store, err := ReadS3(context.Background(), g, "zoogist", "data/mammals.csv")
	require.NoError(t, err)
	assert.Equal(t, 1, store.Len())
	assert.Equal(t, "zoogist", g.bucket)
	assert.Equal(t, "data/mammals.csv", g.key)

	_, err = ReadS3(context.Background(), &fakeGetter{err: errors.New("access denied")}, "b", "k")
	require.Error(t, err)
	assert.Equal(t, apperr.DatasetLoad, apperr.KindOf(err))
}

func TestParseS3URI(t *testing.T) {
	b, k, ok := ParseS3URI("s3://bucket/path/to/file.csv")
	require.True(t, ok)
	assert.Equal(t, "bucket", b)
	assert.Equal(t, "path/to/file.csv", k)

	for _, in := range []string{"data/file.csv", "s3://bucket", "s3:///key", "s3://bucket/"} {
		_, _, ok := ParseS3URI(in)
		assert.False(t, ok, in)
	}
}

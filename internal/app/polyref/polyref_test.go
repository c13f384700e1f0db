package polyref

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaeducates/backend/internal/pkg/apperrors"
)

func TestFieldParse(t *testing.T) {
	tests := []struct {
		name    string
		field   Field
		tag     string
		id      int64
		want    Ref
		wantErr string
	}{
		{"student author", AuthorField, "users.StudentProfile", 4, Ref{Kind: KindStudentProfile, ID: 4}, ""},
		{"mentor author lower case model", AuthorField, "mentorship.mentorprofile", 2, Ref{Kind: KindMentorProfile, ID: 2}, ""},
		{"parent purchaser", PurchaserField, "users.ParentProfile", 7, Ref{Kind: KindParentProfile, ID: 7}, ""},
		{"school purchaser", PurchaserField, "users.SchoolProfile", 1, Ref{Kind: KindSchoolProfile, ID: 1}, ""},
		{"parent is not an author", AuthorField, "users.ParentProfile", 1, Ref{}, "author_type"},
		{"student is not a purchaser", PurchaserField, "users.StudentProfile", 1, Ref{}, "purchaser_type"},
		{"missing dot", AuthorField, "StudentProfile", 1, Ref{}, "author_type"},
		{"three parts", AuthorField, "a.b.c", 1, Ref{}, "author_type"},
		{"empty app label", AuthorField, ".StudentProfile", 1, Ref{}, "author_type"},
		{"empty model", PurchaserField, "users.", 1, Ref{}, "purchaser_type"},
		{"unknown app", AuthorField, "auth.User", 1, Ref{}, "author_type"},
		{"zero id", AuthorField, "users.StudentProfile", 0, Ref{}, "author_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.field.Parse(tt.tag, tt.id)
			if tt.wantErr != "" {
				verr, ok := apperrors.AsValidationError(err)
				require.True(t, ok, "expected validation error, got %v", err)
				assert.Contains(t, verr.Fields, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFieldParseDoesNotCheckExistence(t *testing.T) {
	ref, err := AuthorField.Parse("users.StudentProfile", 999999)
	require.NoError(t, err)
	assert.Equal(t, int64(999999), ref.ID)
}

func TestFieldLoad(t *testing.T) {
	ref, err := PurchaserField.Load("users.schoolprofile", 3)
	require.NoError(t, err)
	assert.Equal(t, Ref{Kind: KindSchoolProfile, ID: 3}, ref)

	ref, err = PurchaserField.Load("", 0)
	require.NoError(t, err)
	assert.True(t, ref.IsZero())

	_, err = PurchaserField.Load("users.studentprofile", 3)
	assert.Error(t, err)
}

func TestResolver(t *testing.T) {
	resolver := NewResolver(map[Kind]LookupFunc{
		KindStudentProfile: func(_ context.Context, id int64) (*Target, error) {
			if id != 1 {
				return nil, ErrBrokenReference
			}
			return &Target{UserID: 10, Display: "student@test.com"}, nil
		},
	})
	ctx := context.Background()

	target, err := resolver.Resolve(ctx, Ref{Kind: KindStudentProfile, ID: 1})
	require.NoError(t, err)
	assert.Equal(t, &Target{Type: "users.StudentProfile", ID: 1, UserID: 10, Display: "student@test.com"}, target)

	_, err = resolver.Resolve(ctx, Ref{Kind: KindStudentProfile, ID: 2})
	assert.ErrorIs(t, err, ErrBrokenReference)

	target, err = resolver.ResolveOptional(ctx, Ref{Kind: KindStudentProfile, ID: 2})
	require.NoError(t, err)
	assert.Nil(t, target)

	target, err = resolver.ResolveOptional(ctx, Ref{})
	require.NoError(t, err)
	assert.Nil(t, target)

	_, err = resolver.Resolve(ctx, Ref{Kind: KindMentorProfile, ID: 1})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrBrokenReference)
}

func TestRefJSON(t *testing.T) {
	raw, err := json.Marshal(Ref{Kind: KindMentorProfile, ID: 5})
	require.NoError(t, err)
	assert.JSONEq(t, `{"content_type":"mentorship.MentorProfile","object_id":5}`, string(raw))

	raw, err = json.Marshal(Ref{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"content_type":null,"object_id":0}`, string(raw))
}

package note_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/mportela/qbnotes/internal/note"
)

func TestService_Create(t *testing.T) {
	type testCase struct {
		name      string
		params    note.CreateParams
		setupMock func(repo *note.MockRepository, notifier *note.MockNotifier)
		wantErr   bool
	}

	params := note.CreateParams{
		TransactionURL:  "https://app.qbo.intuit.com/app/invoice?txnId=145",
		TransactionID:   "145",
		TransactionType: note.TypeInvoice,
		Date:            "03/10/2024",
		Amount:          decimal.RequireFromString("1250.00"),
		CustomerVendor:  "Acme Corp",
		Text:            "Waiting on PO confirmation",
	}

	tests := []testCase{
		{
			name:   "Success",
			params: params,
			setupMock: func(repo *note.MockRepository, notifier *note.MockNotifier) {
				repo.EXPECT().
					CreateNote(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, n *note.Note) error {
						n.ID = "4f6e9c1a-2b7d-4aa1-9a30-8a1df43f7f01"
						return nil
					})
				notifier.EXPECT().NotifyNote(gomock.Any(), gomock.Any()).Return(nil)
			},
		},
		{
			name:   "NotifierFailureIsSwallowed",
			params: params,
			setupMock: func(repo *note.MockRepository, notifier *note.MockNotifier) {
				repo.EXPECT().
					CreateNote(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, n *note.Note) error {
						n.ID = "4f6e9c1a-2b7d-4aa1-9a30-8a1df43f7f02"
						return nil
					})
				notifier.EXPECT().
					NotifyNote(gomock.Any(), gomock.Any()).
					Return(errors.New("webhook unreachable"))
			},
		},
		{
			name:   "RepoError",
			params: params,
			setupMock: func(repo *note.MockRepository, notifier *note.MockNotifier) {
				repo.EXPECT().
					CreateNote(gomock.Any(), gomock.Any()).
					Return(errors.New("connection refused"))
				// No notification when persistence fails.
			},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := note.NewMockRepository(ctrl)
			notifier := note.NewMockNotifier(ctrl)
			tc.setupMock(repo, notifier)

			svc := note.NewService(repo, notifier)

			n, err := svc.Create(context.Background(), tc.params)
			if tc.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, n.ID)
			assert.Equal(t, note.StatusOpen, n.Status)
			assert.Equal(t, tc.params.Text, n.Text)
		})
	}
}

func TestService_Create_DistinctIDs(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := note.NewMockRepository(ctrl)

	seq := 0
	repo.EXPECT().
		CreateNote(gomock.Any(), gomock.Any()).
		Times(2).
		DoAndReturn(func(_ context.Context, n *note.Note) error {
			seq++
			n.ID = map[int]string{1: "id-one", 2: "id-two"}[seq]
			return nil
		})

	svc := note.NewService(repo, nil)

	params := note.CreateParams{
		TransactionURL:  "https://app.qbo.intuit.com/app/expense",
		TransactionType: note.TypeExpense,
		Amount:          decimal.NewFromInt(42),
		Text:            "first",
	}

	first, err := svc.Create(context.Background(), params)
	require.NoError(t, err)

	second, err := svc.Create(context.Background(), params)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
}

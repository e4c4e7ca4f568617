package verification

import (
	"fmt"
)

func (s *ServiceSuite) TestBatchRowIsolationAndOrder() {
	svc := s.newService(s.newBundle(0), s.store)

	rows := []IdentityRecord{
		{Name: "Row One", DocumentNumber: "111111111111", DocumentType: DocumentAadhar},
		{Name: "Row Two", DocumentNumber: "ABCDE1234F", DocumentType: DocumentPan},
		{Name: "", DocumentNumber: "333333333333", DocumentType: DocumentAadhar},
		{Name: "Row Four", DocumentNumber: "EB-2024-991", DocumentType: DocumentUtility},
		{Name: "Row Five", DocumentNumber: "1", DocumentType: "PASSPORT"},
	}

	summary := svc.VerifyBatch(s.ctx, rows)

	s.Equal(5, summary.Total)
	s.Equal(3, summary.Successful)
	s.Equal(2, summary.Failed)
	s.Equal(summary.Total, summary.Successful+summary.Failed)

	s.Require().Len(summary.Outcomes, 5)
	for i, o := range summary.Outcomes {
		s.Equal(i+1, o.Row)
	}
	s.NotNil(summary.Outcomes[0].Result)
	s.NotNil(summary.Outcomes[1].Result)
	s.Nil(summary.Outcomes[2].Result)
	s.Equal("name is required", summary.Outcomes[2].Err)
	s.NotNil(summary.Outcomes[3].Result)
	s.Nil(summary.Outcomes[4].Result)
	s.NotEmpty(summary.Outcomes[4].Err)

	// Only the rows that scored reach the audit trail.
	s.Equal(3, s.store.Len())
}

func (s *ServiceSuite) TestBatchEmptyInput() {
	svc := s.newService(s.newBundle(0), s.store)

	summary := svc.VerifyBatch(s.ctx, nil)
	s.Equal(0, summary.Total)
	s.Equal(0, summary.Successful)
	s.Equal(0, summary.Failed)
	s.Empty(summary.Outcomes)
}

func (s *ServiceSuite) TestBatchOrderPreservedUnderParallelism() {
	svc := s.newService(s.newBundle(0), s.store)

	rows := make([]IdentityRecord, 40)
	for i := range rows {
		rows[i] = IdentityRecord{
			Name:           fmt.Sprintf("Person %02d", i),
			DocumentNumber: fmt.Sprintf("%012d", i),
			DocumentType:   DocumentAadhar,
		}
	}

	summary := svc.VerifyBatch(s.ctx, rows)
	s.Equal(40, summary.Successful)
	for i, o := range summary.Outcomes {
		s.Require().NotNil(o.Result)
		s.Equal(fmt.Sprintf("Person %02d", i), o.Result.Record.Name)
	}
}

func (s *ServiceSuite) TestBatchAllRowsFailStillAccounted() {
	svc := s.newService(s.newBundle(0), failingStore{})

	rows := []IdentityRecord{
		{Name: "A", DocumentNumber: "111111111111", DocumentType: DocumentAadhar},
		{Name: "B", DocumentNumber: "222222222222", DocumentType: DocumentAadhar},
	}
	summary := svc.VerifyBatch(s.ctx, rows)
	s.Equal(2, summary.Total)
	s.Equal(0, summary.Successful)
	s.Equal(2, summary.Failed)
	for _, o := range summary.Outcomes {
		s.Equal("failed to persist verification record", o.Err)
	}
}

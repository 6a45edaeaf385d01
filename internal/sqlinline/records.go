package sqlinline

const QInsertEnquiry = `--sql 4dfaae19-29f0-4b5b-b070-7325d737e713
insert into enquiries (id, user_id, name, phone, description)
values (gen_random_uuid(), $1::uuid, $2, $3, $4)
returning id, created_at;
`

const QListEnquiries = `--sql a87a0d68-961a-4a07-b680-742fa5ce6696
select e.id, e.user_id, u.email, e.name, e.phone, e.description, e.created_at
from enquiries e
join users u on u.id = e.user_id
order by e.created_at desc;
`

const QDeleteEnquiry = `--sql d7a806f2-cfbf-48ce-952a-5f6c24d1e1eb
delete from enquiries
where id = $1::uuid;
`

const QInsertReferral = `--sql 1777d9f5-9abc-48d1-8f44-20ce4f0b98ed
insert into referrals (id, user_id, name, contact_number, company_name, email, status)
values (gen_random_uuid(), $1::uuid, $2, $3, $4, $5, 'Pending')
returning id, status, created_at;
`

const QListReferralsByUser = `--sql fb10f2ef-8ed7-4519-85cc-779efec89f07
select id, user_id, name, contact_number, company_name, email, status, created_at, updated_at
from referrals
where user_id = $1::uuid
order by created_at desc;
`

const QListReferrals = `--sql 41269a90-e840-44a2-81c0-a400e6260f73
select r.id, r.user_id, u.owner_name, u.email, r.name, r.contact_number, r.company_name, r.email, r.status, r.created_at
from referrals r
join users u on u.id = r.user_id
order by r.created_at desc;
`

const QUpdateReferralStatus = `--sql 3b9464ba-0921-4f3e-a184-2de859ad7107
update referrals
set status = $2, updated_at = now()
where id = $1::uuid
returning id, user_id, name, contact_number, company_name, email, status, created_at, updated_at;
`

const QInsertContentRequest = `--sql 3f61402a-ef8f-4f04-ad69-8c53186d1735
insert into content_requests (id, user_id, requests)
values (gen_random_uuid(), $1::uuid, $2::jsonb)
returning id, created_at;
`

const QListContentRequests = `--sql f0c575db-f5b9-44a7-8e8c-fe319883db2e
select cr.id, cr.user_id, u.business_name, cr.requests, cr.created_at
from content_requests cr
join users u on u.id = cr.user_id
order by cr.created_at desc;
`

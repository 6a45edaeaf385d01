package sqlinline

const QInsertUser = `--sql 102c144c-538a-4b26-a761-6389a51c1f86
insert into users (id, business_name, owner_name, industry, contact_info, gst_or_pan, city, website, email, password_hash, role, progress)
values (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7, lower($8), $9, 'user', '[]'::jsonb)
returning id, role, created_at;
`

const QSelectUserByEmail = `--sql bcea95ed-7553-4259-bec3-5e52e469cb27
select id, email, password_hash, role
from users
where email = lower($1)
limit 1;
`

const QSelectUserByID = `--sql 2ea65887-dc6a-41f2-a7d1-34925465abf4
select id, business_name, owner_name, industry, contact_info, gst_or_pan, city, website,
       email, role, is_verified, membership_id, valid_till, progress, created_at, updated_at
from users
where id = $1::uuid
limit 1;
`

const QSelectAuthUser = `--sql 2a27ce16-1a7b-43f3-9cb8-938d2bb871dd
select id, email, role
from users
where id = $1::uuid
limit 1;
`

const QUpdateUserProgress = `--sql 7580958b-b7ef-4179-9547-f431d4a60df5
update users
set progress = $2::jsonb, updated_at = now()
where id = $1::uuid
returning id;
`

const QAssignMembership = `--sql 2a2a3e0a-2705-40b8-8ef7-9e21617e2dd1
update users
set membership_id = $2::uuid, valid_till = $3, updated_at = now()
where id = $1::uuid
returning id;
`

const QListUsers = `--sql 2e0d0e72-1768-47b3-938c-43a991785e5d
select u.id, u.business_name, u.owner_name, u.industry, u.contact_info, u.email, u.role,
       u.membership_id, u.valid_till, u.progress, u.created_at,
       m.plan_name, m.price, m.validity_days, m.allowed_service_ids
from users u
left join memberships m on m.id = u.membership_id
order by u.created_at desc;
`
